// Package nlp loads the language resources shared by the sentiment and
// keyword components. Everything is built once at startup by Init.
package nlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/jonreiter/govader"
	"github.com/mikey/textguard/internal/config"
	"go.uber.org/zap"
)

const downloadTimeout = 30 * time.Second

// Toolkit bundles the initialised language resources
type Toolkit struct {
	Vader     *govader.SentimentIntensityAnalyzer
	Stopwords StopwordSet
	Tokenizer ProseTokenizer
	Tagger    ProseTagger
}

// Init builds the toolkit, extending the stopword list from
// nlp.stopwords_file and fetching that file from nlp.stopwords_url when
// it is missing
func Init(cfg config.NLPConfig, logger *zap.Logger) (*Toolkit, error) {
	tk := &Toolkit{
		Vader:     govader.NewSentimentIntensityAnalyzer(),
		Stopwords: DefaultStopwords(),
	}

	if cfg.StopwordsFile != "" {
		path, err := resolveDataPath(cfg.StopwordsFile)
		if err != nil {
			return nil, err
		}
		if err := ensureStopwordsFile(path, cfg.StopwordsURL, logger); err != nil {
			return nil, err
		}
		added, err := loadStopwordsFile(path, tk.Stopwords)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded extra stopwords", zap.String("path", path), zap.Int("added", added))
	}

	if cfg.Warmup {
		start := time.Now()
		tk.Tagger.Tag([]string{"warm", "up"})
		logger.Debug("Part-of-speech tagger ready", zap.Duration("elapsed", time.Since(start)))
	}

	return tk, nil
}

// resolveDataPath places relative names under the XDG data directory
func resolveDataPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	path, err := xdg.DataFile(filepath.Join("textguard", name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve data file %s: %w", name, err)
	}
	return path, nil
}

func ensureStopwordsFile(path, url string, logger *zap.Logger) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat stopwords file: %w", err)
	}
	if url == "" {
		return fmt.Errorf("stopwords file %s does not exist and no download URL is configured", path)
	}

	logger.Info("Downloading stopwords", zap.String("url", url), zap.String("path", path))
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	return download(ctx, url, path)
}

func download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create resource directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}

func loadStopwordsFile(path string, into StopwordSet) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open stopwords file: %w", err)
	}
	defer f.Close()

	added, err := readStopwords(f, into)
	if err != nil {
		return 0, fmt.Errorf("failed to read stopwords file: %w", err)
	}
	return added, nil
}
