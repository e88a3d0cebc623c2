// Package social runs the interactive sentiment assistant: read or fetch
// a post, score it, and print response suggestions.
package social

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/suggest"
	"go.uber.org/zap"
)

// Analyzer produces a sentiment result for a text
type Analyzer interface {
	Analyze(ctx context.Context, text string) (core.SentimentResult, error)
}

// Suggester turns a sentiment result into suggestions
type Suggester interface {
	SuggestFor(r core.SentimentResult) suggest.Result
}

// Options tune the fetch prompts
type Options struct {
	DefaultCount int
	MaxCount     int
	Lang         string
	Mode         string
	SourceName   string
}

// DefaultOptions matches the Twitter search limits
func DefaultOptions() Options {
	return Options{DefaultCount: core.DefaultPostCount, MaxCount: 100, Lang: "en", Mode: "extended", SourceName: "tweets"}
}

// App is the menu loop. fetcher may be nil, which disables option 2.
type App struct {
	analyzer  Analyzer
	suggester Suggester
	fetcher   core.PostFetcher
	opts      Options
	out       io.Writer
	styles    styles
	logger    *zap.Logger
}

// NewApp creates the assistant
func NewApp(analyzer Analyzer, suggester Suggester, fetcher core.PostFetcher, opts Options, out io.Writer, logger *zap.Logger) *App {
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = core.DefaultPostCount
	}
	if opts.MaxCount < opts.DefaultCount {
		opts.MaxCount = opts.DefaultCount
	}
	if opts.SourceName == "" {
		opts.SourceName = "posts"
	}
	return &App{
		analyzer:  analyzer,
		suggester: suggester,
		fetcher:   fetcher,
		opts:      opts,
		out:       out,
		styles:    newStyles(out),
		logger:    logger,
	}
}

// Run reads menu choices from in until exit, end of input or cancellation.
// A prompt waiting for input returns as soon as ctx is cancelled.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	lines := readLines(readCtx, in)
	prompt := func(msg string) (string, bool) {
		fmt.Fprint(a.out, msg)
		select {
		case line, ok := <-lines:
			return line, ok
		case <-ctx.Done():
			return "", false
		}
	}

	a.println("")
	a.println("Initialization complete. Welcome to Social Media AI!")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.rule()
		a.println("Choose an option:")
		a.println("  (1) Enter text manually")
		a.printf("  (2) Fetch %s\n", a.opts.SourceName)
		a.println("  (3) Exit")

		choice, ok := prompt("Enter your choice (1, 2, or 3): ")
		if !ok {
			if err := ctx.Err(); err != nil {
				return err
			}
			a.logger.Warn("Input closed while reading menu choice, exiting")
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			text, ok := prompt("Enter your social media post/text:\n> ")
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				a.logger.Warn("Input closed while reading text, exiting")
				return nil
			}
			a.guard(func() { a.ProcessText(ctx, text) })
		case "2":
			if !a.fetchMenu(ctx, prompt) {
				return ctx.Err()
			}
		case "3":
			a.logger.Info("User chose to exit")
			a.println("Exiting Social Media AI. Goodbye!")
			return nil
		default:
			a.println("Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. The channel closes at end of input.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// RunScripted treats every input as typed text. "exit" in any case stops early.
func (a *App) RunScripted(ctx context.Context, inputs []string) error {
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.rule()
		if strings.EqualFold(input, "exit") {
			a.logger.Info("User chose to exit")
			a.println("Exiting Social Media AI. Goodbye!")
			return nil
		}
		a.printf("Test Mode: Simulating manual text input with: '%s'\n", input)
		a.guard(func() { a.ProcessText(ctx, input) })
	}
	a.logger.Info("Finished processing all predefined test inputs")
	return nil
}

// fetchMenu returns false when input ran out
func (a *App) fetchMenu(ctx context.Context, prompt func(string) (string, bool)) bool {
	if a.fetcher == nil {
		a.printf("Fetching %s is not available. Please check the source configuration and API credentials.\n", a.opts.SourceName)
		a.logger.Warn("Post fetching requested but no fetcher is configured")
		return true
	}

	query, ok := prompt("Enter keyword/hashtag to search: ")
	if !ok {
		return false
	}
	query = strings.TrimSpace(query)
	if query == "" {
		a.println("Search query cannot be empty.")
		return true
	}

	raw, ok := prompt(fmt.Sprintf("How many %s to fetch? (default %d, max %d): ", a.opts.SourceName, a.opts.DefaultCount, a.opts.MaxCount))
	if !ok {
		return false
	}
	count := a.parseCount(raw)

	a.guard(func() { a.processFetched(ctx, query, count) })
	return true
}

func (a *App) parseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return a.opts.DefaultCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		a.printf("Invalid number. Using default (%d).\n", a.opts.DefaultCount)
		return a.opts.DefaultCount
	}
	if n < 1 || n > a.opts.MaxCount {
		a.printf("Number of %s must be between 1 and %d. Using default (%d).\n", a.opts.SourceName, a.opts.MaxCount, a.opts.DefaultCount)
		return a.opts.DefaultCount
	}
	return n
}

func (a *App) processFetched(ctx context.Context, query string, count int) {
	a.printf("\nFetching %d %s for query: '%s'...\n", count, a.opts.SourceName, query)
	posts := a.fetcher.FetchPosts(ctx, core.PostQuery{
		Query: query,
		Count: count,
		Lang:  a.opts.Lang,
		Mode:  a.opts.Mode,
	})
	if len(posts) == 0 {
		a.printf("No %s found for your query, or an error occurred during fetching.\n", a.opts.SourceName)
		return
	}

	a.println(a.styles.section.Render(fmt.Sprintf("--- Processing %d Fetched %s ---", len(posts), title(a.opts.SourceName))))
	for i, post := range posts {
		a.printf("\n\n--- %s %d/%d ---\n", title(singular(a.opts.SourceName)), i+1, len(posts))
		a.printf("Original %s: \"%s\"\n", title(singular(a.opts.SourceName)), post)
		a.guard(func() { a.ProcessText(ctx, post) })
		a.println(a.styles.rule.Render(strings.Repeat("-", 30)))
	}
}

// ProcessText analyses text and prints its scores and suggestions
func (a *App) ProcessText(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		a.logger.Info("Received empty text for processing")
		a.println("  " + a.styles.notice.Render("Input text is empty. Skipping analysis and suggestions."))
		return
	}

	a.println("\n" + a.styles.section.Render("--- Sentiment Analysis ---"))
	result, err := a.analyzer.Analyze(ctx, text)
	if err != nil {
		a.logger.Error("Sentiment analysis failed", zap.Error(err))
		a.printf("  An unexpected error occurred during sentiment analysis: %v\n", err)
		return
	}

	label := string(result.OverallSentiment)
	a.printf("  %s \"%s\"\n", a.styles.label.Render("Text:"), result.Text)
	a.printf("  %s %s\n", a.styles.label.Render("Overall Sentiment:"), a.styles.sentiment(label).Render(label))
	a.println("  Scores:")
	a.printf("    Positive: %.3f\n", result.Scores.Positive)
	a.printf("    Negative: %.3f\n", result.Scores.Negative)
	a.printf("    Neutral:  %.3f\n", result.Scores.Neutral)
	a.printf("    Compound: %.3f\n", result.Scores.Compound)

	a.println("\n" + a.styles.section.Render("--- Content Suggestions ---"))
	res := a.suggester.SuggestFor(result)
	if res.Status == suggest.StatusInvalidInput || res.Status == suggest.StatusMissingKey {
		a.println("  Could not generate suggestions due to an issue:")
	}
	if len(res.Keywords) > 0 {
		a.printf("  %s %s\n", a.styles.label.Render("Keywords:"), strings.Join(res.Keywords, ", "))
	}
	for _, s := range res.Suggestions {
		a.printf("  %s %s\n", a.styles.bullet.Render("-"), s)
	}
}

// guard keeps one failing iteration from ending the loop
func (a *App) guard(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Recovered from panic while processing input", zap.Any("panic", r))
			a.printf("An error occurred: %v\n", r)
		}
	}()
	fn()
}

func (a *App) rule() {
	a.println("\n" + a.styles.rule.Render(strings.Repeat("=", 50)))
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func singular(s string) string {
	return strings.TrimSuffix(s, "s")
}
