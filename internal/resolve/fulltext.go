package resolve

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"MediaCurator/internal/domain"
)

const (
	fulltextUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	maxBodyBytes      = 2 << 20
)

var (
	noiseSelector    = "script, style, nav, header, footer, aside, iframe, form, button"
	contentSelectors = []string{
		"article",
		".article-body",
		".article-content",
		".post-content",
		".entry-content",
		"main article",
	}
	contentClassExpr = regexp.MustCompile(`(content|article|post|entry|story|text)`)
	whitespaceExpr   = regexp.MustCompile(`\s+`)
)

// Fulltext fetches the candidate's link and extracts the main article text.
// Readability runs first; when it yields too little the selector chain takes
// over. Extracted text between MinLen and GoodLen is a paywall symptom and
// is surfaced as a partial (ok=false) so the search stage can enrich it.
type Fulltext struct {
	Client  *http.Client
	MinLen  int
	GoodLen int
	MaxLen  int
}

// NewFulltext builds the stage with a default 15s-timeout client.
func NewFulltext(client *http.Client, minLen, goodLen, maxLen int) *Fulltext {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fulltext{Client: client, MinLen: minLen, GoodLen: goodLen, MaxLen: maxLen}
}

// Name implements Strategy.
func (*Fulltext) Name() string { return string(domain.ProvenanceFulltext) }

// Resolve implements Strategy. All network and parse errors count as stage
// failure and are never propagated.
func (f *Fulltext) Resolve(ctx context.Context, c domain.Candidate) (string, bool) {
	if c.Link == "" {
		return "", false
	}

	body, err := f.fetch(ctx, c.Link)
	if err != nil {
		return "", false
	}

	text := f.extract(body, c.Link)
	text = cleanText(text, f.MaxLen)

	switch {
	case len(text) > f.GoodLen:
		return text, true
	case len(text) > f.MinLen:
		return text, false
	default:
		return "", false
	}
}

func (f *Fulltext) fetch(ctx context.Context, link string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fulltextUserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, io.EOF
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func (f *Fulltext) extract(body []byte, link string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	// Noise is stripped once, before both the readability and selector paths.
	doc.Find(noiseSelector).Remove()

	var best string

	if stripped, err := doc.Html(); err == nil {
		if pageURL, err := url.Parse(link); err == nil {
			if article, err := readability.FromReader(strings.NewReader(stripped), pageURL); err == nil {
				best = article.TextContent
				if len(cleanText(best, f.MaxLen)) > f.GoodLen {
					return best
				}
			}
		}
	}

	if text := extractBySelectors(doc); len(text) > len(best) {
		best = text
		if len(cleanText(best, f.MaxLen)) > f.GoodLen {
			return best
		}
	}

	if text := extractByClassHeuristic(doc); len(text) > len(best) {
		best = text
	}
	if len(cleanText(best, f.MaxLen)) > f.GoodLen {
		return best
	}

	if text := extractParagraphs(doc); len(text) > len(best) {
		best = text
	}
	return best
}

func extractBySelectors(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(node.Text()); len(text) > 300 {
			return text
		}
	}
	return ""
}

func extractByClassHeuristic(doc *goquery.Document) string {
	var best string
	doc.Find("div[class]").Each(func(_ int, div *goquery.Selection) {
		class, _ := div.Attr("class")
		if !contentClassExpr.MatchString(strings.ToLower(class)) {
			return
		}
		if text := strings.TrimSpace(div.Text()); len(text) > len(best) {
			best = text
		}
	})
	return best
}

func extractParagraphs(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func cleanText(text string, maxLen int) string {
	text = whitespaceExpr.ReplaceAllString(strings.TrimSpace(text), " ")
	if maxLen > 0 && len(text) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
