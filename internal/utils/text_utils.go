package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := CutUTF8(text, maxSize)

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// CutUTF8 returns at most maxSize bytes of s, backing off only over a rune
// split by the cut. Invalid bytes before the cut are kept.
func CutUTF8(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	i := maxSize
	for i > 0 && maxSize-i < utf8.UTFMax && !utf8.RuneStart(s[i]) {
		i--
	}
	if maxSize-i == utf8.UTFMax {
		// stray continuation bytes, not a split rune
		i = maxSize
	}
	return s[:i]
}

// SanitizeUTF8 drops invalid UTF-8 bytes
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// Normalize folds full-width forms to their narrow equivalents and composes
// the text to NFC, so visually identical messages tokenize identically.
func (tp *TextProcessor) Normalize(text string) string {
	return norm.NFC.String(width.Fold.String(text))
}

// ProcessText sanitizes, truncates and normalizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.Normalize(tp.TruncateText(tp.SanitizeUTF8(text), maxSize))
}

// PrepareMessage is ProcessText without a size limit, trimmed of outer space
func (tp *TextProcessor) PrepareMessage(text string) string {
	return strings.TrimSpace(tp.ProcessText(text, 0))
}
