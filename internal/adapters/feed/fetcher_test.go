package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/textguard/internal/core"
	"go.uber.org/zap/zaptest"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Product news</title>
  <item>
    <title>Battery update</title>
    <description><![CDATA[<p>The new <b>battery</b> firmware fixes the overheating problem that many customers reported last month.</p>]]></description>
  </item>
  <item>
    <title>Battery Aktualisierung</title>
    <description>Die neue Firmware für den Akku behebt das Problem der Überhitzung, das viele Kunden im letzten Monat gemeldet haben.</description>
  </item>
  <item>
    <title>Camera review</title>
    <description>An unrelated story about the camera module and its excellent low light performance in our testing lab.</description>
  </item>
  <item>
    <title>Battery recall</title>
    <description>` + "Some battery packs shipped in the spring are being recalled after reports of swelling, and customers should stop charging them immediately until a replacement arrives." + `</description>
  </item>
</channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.xml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFiltersByQueryAndLanguage(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	f := NewFetcher([]string{srv.URL + "/missing.xml", srv.URL + "/feed.xml"}, 0, zaptest.NewLogger(t))

	got := f.FetchPosts(context.Background(), core.PostQuery{Query: "BATTERY", Count: 10, Lang: "en", Mode: "extended"})
	if len(got) != 2 {
		t.Fatalf("FetchPosts = %q, want 2 English battery posts", got)
	}
	if !strings.HasPrefix(got[0], "Battery update. The new battery firmware") {
		t.Errorf("first post = %q", got[0])
	}
	for _, p := range got {
		if strings.Contains(p, "<") {
			t.Errorf("html not stripped: %q", p)
		}
	}
}

func TestFetchHonoursCountAndCompat(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	f := NewFetcher([]string{srv.URL + "/feed.xml"}, 0, zaptest.NewLogger(t))

	got := f.FetchPosts(context.Background(), core.PostQuery{Query: "recall", Count: 1, Mode: "compat"})
	if len(got) != 1 {
		t.Fatalf("FetchPosts = %q", got)
	}
	if n := len([]rune(got[0])); n != compatLength {
		t.Errorf("compat post has %d runes, want %d", n, compatLength)
	}
}

func TestFetchAllFeedsFailing(t *testing.T) {
	t.Parallel()

	f := NewFetcher([]string{"http://127.0.0.1:1/nothing.xml"}, 0, zaptest.NewLogger(t))
	got := f.FetchPosts(context.Background(), core.PostQuery{Query: "x", Count: 5})
	if got == nil || len(got) != 0 {
		t.Fatalf("FetchPosts = %#v, want empty slice", got)
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No   tags here", "No tags here"},
		{"Fish &amp; chips", "Fish & chips"},
		{"<script>alert(1)</script>Safe", "Safe"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
