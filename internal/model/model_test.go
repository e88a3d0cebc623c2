package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/utils"
	"go.uber.org/zap/zaptest"
)

func corpus() []core.LabeledMessage {
	prizes := []string{"cash", "prize", "iphone", "holiday", "voucher", "ringtone", "ticket", "reward"}
	chats := []string{
		"see you at lunch tomorrow", "running late for the meeting", "call mum when you get home",
		"dinner tonight sounds good", "meeting moved to thursday", "picked up the kids from school",
		"lunch was lovely thanks", "home by seven tonight", "can you grab milk on the way",
		"the train is delayed again", "football practice after school", "movie night at home",
	}

	var msgs []core.LabeledMessage
	for i, p := range prizes {
		msgs = append(msgs, core.LabeledMessage{
			Text:  fmt.Sprintf("WIN free money now! Claim your %s, text %d to claim", p, 80000+i),
			Label: core.LabelSpam,
		})
	}
	for round := 0; round < 3; round++ {
		for _, c := range chats {
			msgs = append(msgs, core.LabeledMessage{Text: fmt.Sprintf("%s (%d)", c, round), Label: core.LabelHam})
		}
	}
	return msgs
}

func trainCorpus(t *testing.T) (*Pipeline, *Report) {
	t.Helper()
	p, report, err := Train(context.Background(), corpus(), DefaultTrainOptions(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return p, report
}

func TestTrainReportsSplitAndAccuracy(t *testing.T) {
	t.Parallel()

	_, report := trainCorpus(t)
	if report.Total != 44 || report.Spam != 8 || report.Ham != 36 {
		t.Fatalf("counts = %d/%d/%d", report.Total, report.Spam, report.Ham)
	}
	// ceil(0.2*44) = 9
	if report.TestSize != 9 || report.TrainSize != 35 {
		t.Fatalf("split = %d/%d", report.TrainSize, report.TestSize)
	}
	if report.Evaluation.Train.Accuracy < 0.95 {
		t.Errorf("train accuracy = %v", report.Evaluation.Train.Accuracy)
	}
	if report.Evaluation.Test.Samples != 9 {
		t.Errorf("test samples = %d", report.Evaluation.Test.Samples)
	}
}

func TestTrainPreparesMessages(t *testing.T) {
	t.Parallel()

	msgs := corpus()
	for i := range msgs {
		if msgs[i].Label == core.LabelSpam {
			// full-width "FREE" folds to ASCII when prepared
			msgs[i].Text = "\uff26\uff32\uff25\uff25 bonus " + msgs[i].Text
		}
	}
	original := msgs[0].Text

	opts := DefaultTrainOptions()
	tp := utils.NewTextProcessor(zaptest.NewLogger(t))
	opts.Prepare = tp.PrepareMessage
	p, _, err := Train(context.Background(), msgs, opts, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	for _, term := range p.Vectorizer.Vocabulary() {
		if term == "\uff46\uff52\uff45\uff45" {
			t.Fatalf("vocabulary holds unfolded term %q", term)
		}
	}
	got, err := p.Predict(tp.PrepareMessage("\uff26\uff32\uff25\uff25 bonus, claim your prize"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsSpam {
		t.Errorf("prepared full-width spam predicted %+v", got)
	}
	if msgs[0].Text != original {
		t.Error("Train modified the caller's messages")
	}
}

func TestPredictFlagsObviousSpam(t *testing.T) {
	t.Parallel()

	p, _ := trainCorpus(t)

	spam, err := p.Predict("free money")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !spam.IsSpam || spam.Label != core.LabelSpam || spam.Probability <= 0.5 {
		t.Errorf("free money = %+v, want spam", spam)
	}

	ham, err := p.Predict("see you at lunch")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if ham.IsSpam || ham.Probability >= 0.5 {
		t.Errorf("lunch message = %+v, want ham", ham)
	}
}

func TestPredictDoesNotRefit(t *testing.T) {
	t.Parallel()

	p, _ := trainCorpus(t)
	before := p.Vectorizer.NumFeatures()
	if _, err := p.Predict("zebra xylophone quokka"); err != nil {
		t.Fatal(err)
	}
	if p.Vectorizer.NumFeatures() != before {
		t.Fatal("prediction changed the vocabulary")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	p, _ := trainCorpus(t)
	dir := filepath.Join(t.TempDir(), "model")
	if err := Save(dir, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, name := range []string{VectorizerFile, ClassifierFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, msg := range []string{"free money", "see you at lunch", "claim your prize"} {
		want, _ := p.Predict(msg)
		got, _ := loaded.Predict(msg)
		if want != got {
			t.Errorf("%q: loaded %+v, original %+v", msg, got, want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := Load(dir); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}

	p, _ := trainCorpus(t)
	if err := Save(dir, p); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ClassifierFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil || errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestScoreAndAccuracy(t *testing.T) {
	t.Parallel()

	m, err := Score([]int{1, 1, 0, 0, 1}, []int{1, 0, 0, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := Confusion{TruePositive: 2, FalsePositive: 1, TrueNegative: 1, FalseNegative: 1}
	if m.Confusion != want {
		t.Fatalf("confusion = %+v", m.Confusion)
	}
	if m.Accuracy != 0.6 {
		t.Errorf("accuracy = %v", m.Accuracy)
	}
	if m.Precision != 2.0/3.0 || m.Recall != 2.0/3.0 {
		t.Errorf("precision/recall = %v/%v", m.Precision, m.Recall)
	}

	if _, err := Accuracy(nil, nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Accuracy([]int{1}, []int{1, 0}); err == nil {
		t.Error("expected error for length mismatch")
	}
	if m, _ := Score([]int{0, 0}, []int{0, 0}); m.Precision != 0 || m.Recall != 0 {
		t.Errorf("no positives should give zero precision/recall, got %+v", m)
	}
}

func TestNewPipelineRejectsUnfitted(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
