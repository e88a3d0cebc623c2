package dataset

import (
	"fmt"
	"strings"

	"github.com/mikey/textguard/internal/core"
)

// EncodeLabel maps a corpus category to its class: spam=1, ham=0
func EncodeLabel(category string) (core.Label, error) {
	switch strings.TrimSpace(category) {
	case "spam":
		return core.LabelSpam, nil
	case "ham":
		return core.LabelHam, nil
	default:
		return 0, fmt.Errorf("unknown category %q: expected spam or ham", category)
	}
}

// DecodeLabel maps a class back to its corpus category
func DecodeLabel(label core.Label) (string, error) {
	switch label {
	case core.LabelSpam, core.LabelHam:
		return label.String(), nil
	default:
		return "", fmt.Errorf("unknown label %d", int(label))
	}
}

// Texts returns the message texts in order
func Texts(messages []core.LabeledMessage) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.Text
	}
	return out
}

// Labels returns the labels as 0/1 integers in order
func Labels(messages []core.LabeledMessage) []int {
	out := make([]int, len(messages))
	for i, m := range messages {
		out[i] = int(m.Label)
	}
	return out
}

// ClassCounts returns how many messages carry each label
func ClassCounts(messages []core.LabeledMessage) (spam, ham int) {
	for _, m := range messages {
		if m.Label == core.LabelSpam {
			spam++
		} else {
			ham++
		}
	}
	return spam, ham
}
