package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mikey/textguard/internal/core"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LoadOptions names the columns and encoding of the corpus file
type LoadOptions struct {
	CategoryColumn string
	MessageColumn  string
	// Encoding is "utf8" (default) or "latin1".
	Encoding string
}

// DefaultLoadOptions matches the layout of the common SMS spam corpus
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{CategoryColumn: "Category", MessageColumn: "Message", Encoding: "utf8"}
}

// LoadCSV reads a labelled corpus from a CSV file with a header row
func LoadCSV(ctx context.Context, path string, opts LoadOptions) ([]core.LabeledMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(ctx, f, opts)
}

// ReadCSV reads a labelled corpus from r
func ReadCSV(ctx context.Context, r io.Reader, opts LoadOptions) ([]core.LabeledMessage, error) {
	if opts.CategoryColumn == "" {
		opts.CategoryColumn = "Category"
	}
	if opts.MessageColumn == "" {
		opts.MessageColumn = "Message"
	}

	switch strings.ToLower(opts.Encoding) {
	case "", "utf8", "utf-8":
	case "latin1", "latin-1", "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("unsupported dataset encoding: %s", opts.Encoding)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read dataset header: empty file")
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	categoryIdx, messageIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, opts.CategoryColumn):
			categoryIdx = i
		case strings.EqualFold(name, opts.MessageColumn):
			messageIdx = i
		}
	}
	if categoryIdx < 0 {
		return nil, fmt.Errorf("dataset is missing column %q", opts.CategoryColumn)
	}
	if messageIdx < 0 {
		return nil, fmt.Errorf("dataset is missing column %q", opts.MessageColumn)
	}

	var messages []core.LabeledMessage
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if categoryIdx >= len(record) {
			return nil, fmt.Errorf("line %d: missing category", line)
		}
		label, err := EncodeLabel(record[categoryIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		text := ""
		if messageIdx < len(record) {
			text = strings.ToValidUTF8(record[messageIdx], "\ufffd")
		}
		messages = append(messages, core.LabeledMessage{Text: text, Label: label})
	}

	return messages, nil
}
