package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap/zaptest"
)

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	t.Parallel()
	tp := NewTextProcessor(zaptest.NewLogger(t))

	// "é" is two bytes, so a cut at 2 lands inside the second rune.
	got := tp.TruncateText("aéb", 2)
	if !strings.HasPrefix(got, "a\n[... Content truncated") {
		t.Fatalf("TruncateText = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatal("result is not valid UTF-8")
	}

	if got := tp.TruncateText("short", 0); got != "short" {
		t.Errorf("no limit should keep text, got %q", got)
	}
}

func TestCutUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "under limit", in: "free", max: 10, want: "free"},
		{name: "split rune", in: "a\u00e9b", max: 2, want: "a"},
		{name: "early invalid byte", in: "Win \xff free money", max: 14, want: "Win \xff free mon"},
		{name: "stray continuation bytes", in: "ab\x80\x80\x80\x80\x80cd", max: 6, want: "ab\x80\x80\x80\x80"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CutUTF8(tt.in, tt.max); got != tt.want {
				t.Errorf("CutUTF8(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestProcessTextSanitizesBeforeTruncating(t *testing.T) {
	t.Parallel()
	tp := NewTextProcessor(zaptest.NewLogger(t))

	got := tp.ProcessText("Win \xff"+strings.Repeat("prize ", 100), 100)
	if !strings.HasPrefix(got, "Win prize prize") {
		t.Fatalf("ProcessText = %q", got)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	t.Parallel()
	tp := NewTextProcessor(zaptest.NewLogger(t))

	if got := tp.SanitizeUTF8("ok\xffgo"); got != "okgo" {
		t.Errorf("SanitizeUTF8 = %q, want okgo", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	tp := NewTextProcessor(zaptest.NewLogger(t))

	// Full-width letters and a decomposed e + combining acute.
	got := tp.Normalize("\uff26\uff32\uff25\uff25 cafe\u0301")
	if got != "FREE caf\u00e9" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestPrepareMessage(t *testing.T) {
	t.Parallel()
	tp := NewTextProcessor(zaptest.NewLogger(t))

	if got := tp.PrepareMessage("  win\xff now  "); got != "win now" {
		t.Errorf("PrepareMessage = %q", got)
	}
}

func TestDecodeJSONResponse(t *testing.T) {
	t.Parallel()

	type scores struct {
		Compound float64 `json:"compound"`
	}
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "plain", in: `{"compound": 0.5}`, want: 0.5},
		{name: "fenced", in: "```json\n{\"compound\": -0.25}\n```", want: -0.25},
		{name: "prose", in: `Sure! Here it is: {"compound": 0.1} Hope it helps.`, want: 0.1},
		{name: "no object", in: "I cannot answer", wantErr: true},
		{name: "broken object", in: `{"compound": }`, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got scores
			err := DecodeJSONResponse(tt.in, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Compound != tt.want {
				t.Errorf("compound = %v, want %v", got.Compound, tt.want)
			}
		})
	}
}
