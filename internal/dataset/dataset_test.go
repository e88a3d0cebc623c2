package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/textguard/internal/core"
)

const sample = `Category,Message
ham,"Go until jurong point, crazy.."
spam,Free entry in 2 a wkly comp to win FA Cup final tkts
ham,
 spam ,WINNER!! As a valued network customer you have been selected
`

func TestReadCSV(t *testing.T) {
	t.Parallel()

	msgs, err := ReadCSV(context.Background(), strings.NewReader(sample), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	wantLabels := []int{0, 1, 0, 1}
	if got := Labels(msgs); !equalInts(got, wantLabels) {
		t.Errorf("labels = %v, want %v", got, wantLabels)
	}
	if msgs[2].Text != "" {
		t.Errorf("empty message should load as empty string, got %q", msgs[2].Text)
	}
	if msgs[0].Text != "Go until jurong point, crazy.." {
		t.Errorf("quoted text = %q", msgs[0].Text)
	}
	if spam, ham := ClassCounts(msgs); spam != 2 || ham != 2 {
		t.Errorf("ClassCounts = %d/%d", spam, ham)
	}
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "empty file"},
		{name: "missing message column", in: "Category,Body\nham,hi\n", want: `missing column "Message"`},
		{name: "missing category column", in: "Label,Message\nham,hi\n", want: `missing column "Category"`},
		{name: "unknown category", in: "Category,Message\nham,hi\nphish,click\n", want: "line 3"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.in), DefaultLoadOptions())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestReadCSVLatin1(t *testing.T) {
	t.Parallel()

	in := "Category,Message\nham,caf\xe9 tonight\n"
	opts := DefaultLoadOptions()
	opts.Encoding = "latin1"
	msgs, err := ReadCSV(context.Background(), strings.NewReader(in), opts)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if msgs[0].Text != "café tonight" {
		t.Errorf("text = %q", msgs[0].Text)
	}
}

func TestLoadCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mail.csv")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	msgs, err := LoadCSV(context.Background(), path, DefaultLoadOptions())
	if err != nil || len(msgs) != 4 {
		t.Fatalf("LoadCSV = %d, %v", len(msgs), err)
	}

	if _, err := LoadCSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), DefaultLoadOptions()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEncodeDecodeLabel(t *testing.T) {
	t.Parallel()

	for _, cat := range []string{"spam", "ham"} {
		l, err := EncodeLabel(cat)
		if err != nil {
			t.Fatalf("EncodeLabel(%q): %v", cat, err)
		}
		if l != core.LabelSpam && l != core.LabelHam {
			t.Fatalf("label out of range: %d", l)
		}
		back, err := DecodeLabel(l)
		if err != nil || back != cat {
			t.Fatalf("DecodeLabel(%d) = %q, %v", l, back, err)
		}
	}
	if l, _ := EncodeLabel("spam"); l != 1 {
		t.Error("spam must encode to 1")
	}
	if _, err := EncodeLabel("Spam"); err == nil {
		t.Error("categories are case sensitive")
	}
	if _, err := DecodeLabel(core.Label(7)); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	msgs := make([]core.LabeledMessage, 101)
	for i := range msgs {
		msgs[i] = core.LabeledMessage{Text: strings.Repeat("x", i+1), Label: core.Label(i % 2)}
	}

	train, test, err := Split(msgs, 0.2, 42)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(test) != 21 || len(train) != 80 {
		t.Fatalf("sizes = %d/%d, want 80/21", len(train), len(test))
	}

	seen := map[string]bool{}
	for _, m := range append(append([]core.LabeledMessage{}, train...), test...) {
		if seen[m.Text] {
			t.Fatalf("message %q appears twice", m.Text)
		}
		seen[m.Text] = true
	}
	if len(seen) != len(msgs) {
		t.Fatalf("split lost messages: %d of %d", len(seen), len(msgs))
	}

	train2, test2, _ := Split(msgs, 0.2, 42)
	if Texts(train2)[0] != Texts(train)[0] || Texts(test2)[5] != Texts(test)[5] {
		t.Fatal("same seed must give same partition")
	}
	_, test3, _ := Split(msgs, 0.2, 7)
	if strings.Join(Texts(test3), ",") == strings.Join(Texts(test), ",") {
		t.Fatal("different seeds should shuffle differently")
	}
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	one := []core.LabeledMessage{{Text: "a"}}
	if _, _, err := Split(one, 0.2, 1); err != ErrNotEnoughSamples {
		t.Errorf("err = %v, want ErrNotEnoughSamples", err)
	}
	two := append(one, core.LabeledMessage{Text: "b"})
	for _, size := range []float64{0, 1, -0.5, 1.5} {
		if _, _, err := Split(two, size, 1); err == nil {
			t.Errorf("test size %v should be rejected", size)
		}
	}
	train, test, err := Split(two, 0.9, 1)
	if err != nil || len(train) != 1 || len(test) != 1 {
		t.Errorf("tiny split = %d/%d, %v", len(train), len(test), err)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
