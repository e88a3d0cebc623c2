package main

import (
	"testing"

	"github.com/mikey/textguard/internal/config"
	"github.com/spf13/cobra"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Int64("seed", 42, "")
	cmd.Flags().String("data", "", "")
	if err := cmd.Flags().Parse([]string{"--data", "corpus.csv"}); err != nil {
		t.Fatal(err)
	}

	v := config.NewEmptyViper()
	v.Set("training.random_seed", 7)
	cfg := config.NewFromViper(v)

	applyFlags(cmd.Flags(), cfg, []flagBinding{
		{"seed", "training.random_seed"},
		{"data", "dataset.path"},
	})

	if got := cfg.GetDataset().Path; got != "corpus.csv" {
		t.Errorf("dataset.path = %q, want corpus.csv", got)
	}
	if got := cfg.GetTraining().RandomSeed; got != 7 {
		t.Errorf("unchanged flag overrode config: seed = %d", got)
	}
}

func TestTitle(t *testing.T) {
	for in, want := range map[string]string{"spam": "Spam", "ham": "Ham", "": ""} {
		if got := title(in); got != want {
			t.Errorf("title(%q) = %q, want %q", in, got, want)
		}
	}
}
