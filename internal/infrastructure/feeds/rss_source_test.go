package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MediaCurator/internal/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>DWDL</title>
    <item>
      <title>RTL startet neue Show</title>
      <link>https://www.dwdl.de/nachrichten/1</link>
      <description>Der Sender kündigt ein neues Primetime-Format an.</description>
      <pubDate>Fri, 28 Aug 2026 06:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Ohne Link</title>
      <description>Dieser Eintrag hat keinen Link.</description>
    </item>
    <item>
      <title>Zweite Meldung</title>
      <link>https://www.dwdl.de/nachrichten/2</link>
      <description>Noch eine Meldung.</description>
    </item>
  </channel>
</rss>`

func TestFetchParsesFeedItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	source := NewRSSSource([]config.FeedConfig{{Name: "DWDL", URL: server.URL}}, 20, nil)
	candidates, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (entry without link dropped), got %d", len(candidates))
	}

	first := candidates[0]
	if first.Source != "DWDL" {
		t.Fatalf("unexpected source: %s", first.Source)
	}
	if first.Title != "RTL startet neue Show" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Link != "https://www.dwdl.de/nachrichten/1" {
		t.Fatalf("unexpected link: %s", first.Link)
	}
	if first.RawDescription == "" {
		t.Fatal("expected the feed description to be kept")
	}
	if first.PublishedAt.IsZero() {
		t.Fatal("expected the publication date to be parsed")
	}
}

func TestFetchRespectsPerFeedCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	source := NewRSSSource([]config.FeedConfig{{Name: "DWDL", URL: server.URL}}, 1, nil)
	candidates, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected the per-feed cap to hold, got %d", len(candidates))
	}
}

func TestFetchSkipsBrokenFeeds(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer healthy.Close()

	source := NewRSSSource([]config.FeedConfig{
		{Name: "Broken", URL: broken.URL},
		{Name: "DWDL", URL: healthy.URL},
	}, 20, nil)

	candidates, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch must not fail on a single broken feed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected candidates from the healthy feed, got %d", len(candidates))
	}
}

func TestFetchFailsWhenEveryFeedFails(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	source := NewRSSSource([]config.FeedConfig{
		{Name: "Broken A", URL: broken.URL},
		{Name: "Broken B", URL: broken.URL},
	}, 20, nil)

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Fatal("expected an error when no feed can be polled")
	}
}
