package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mikey/textguard/internal/classifier"
	"github.com/mikey/textguard/internal/vectorizer"
)

const (
	// VectorizerFile holds the fitted vocabulary and idf weights
	VectorizerFile = "vectorizer.json"
	// ClassifierFile holds the fitted coefficients
	ClassifierFile = "spam_model.json"
)

// ErrModelNotFound is returned by Load when the artifacts do not exist
var ErrModelNotFound = errors.New("model artifacts not found")

// Save writes both artifacts into dir, creating it when needed
func Save(dir string, p *Pipeline) error {
	vs, err := p.Vectorizer.State()
	if err != nil {
		return fmt.Errorf("failed to export vectorizer: %w", err)
	}
	cs, err := p.Classifier.State()
	if err != nil {
		return fmt.Errorf("failed to export classifier: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, VectorizerFile), vs); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ClassifierFile), cs)
}

// Load restores a pipeline saved by Save
func Load(dir string) (*Pipeline, error) {
	var vs vectorizer.State
	if err := readJSON(filepath.Join(dir, VectorizerFile), &vs); err != nil {
		return nil, err
	}
	var cs classifier.State
	if err := readJSON(filepath.Join(dir, ClassifierFile), &cs); err != nil {
		return nil, err
	}

	vec, err := vectorizer.FromState(vs)
	if err != nil {
		return nil, fmt.Errorf("failed to restore vectorizer: %w", err)
	}
	clf, err := classifier.FromState(cs)
	if err != nil {
		return nil, fmt.Errorf("failed to restore classifier: %w", err)
	}
	return NewPipeline(vec, clf)
}

func writeJSON(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
