package model

import (
	"context"
	"fmt"

	"github.com/mikey/textguard/internal/classifier"
	"github.com/mikey/textguard/internal/core"
	"github.com/mikey/textguard/internal/dataset"
	"github.com/mikey/textguard/internal/vectorizer"
	"go.uber.org/zap"
)

// TrainOptions configures a training run
type TrainOptions struct {
	TestSize   float64
	Seed       int64
	Vectorizer vectorizer.Options
	Classifier classifier.Options
	// Prepare, when set, rewrites every message before the split. Serving
	// must apply the same function before Predict.
	Prepare func(string) string
}

// DefaultTrainOptions returns an 80/20 split seeded with 42
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestSize:   0.2,
		Seed:       42,
		Vectorizer: vectorizer.DefaultOptions(),
		Classifier: classifier.DefaultOptions(),
	}
}

// Report describes a completed training run
type Report struct {
	Total      int                  `json:"total"`
	Spam       int                  `json:"spam"`
	Ham        int                  `json:"ham"`
	TrainSize  int                  `json:"train_size"`
	TestSize   int                  `json:"test_size"`
	Features   int                  `json:"features"`
	Fit        classifier.FitReport `json:"fit"`
	Evaluation Evaluation           `json:"evaluation"`
}

// Train splits messages, fits the vectorizer on the training side only,
// fits the classifier and evaluates both sides
func Train(ctx context.Context, messages []core.LabeledMessage, opts TrainOptions, logger *zap.Logger) (*Pipeline, *Report, error) {
	if opts.Prepare != nil {
		prepared := make([]core.LabeledMessage, len(messages))
		for i, m := range messages {
			prepared[i] = core.LabeledMessage{Text: opts.Prepare(m.Text), Label: m.Label}
		}
		messages = prepared
	}

	spam, ham := dataset.ClassCounts(messages)
	report := &Report{Total: len(messages), Spam: spam, Ham: ham}

	train, test, err := dataset.Split(messages, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split dataset: %w", err)
	}
	report.TrainSize, report.TestSize = len(train), len(test)

	logger.Info("Dataset split",
		zap.Int("total", report.Total),
		zap.Int("spam", spam),
		zap.Int("ham", ham),
		zap.Int("train", report.TrainSize),
		zap.Int("test", report.TestSize),
		zap.Int64("seed", opts.Seed))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	vec, err := vectorizer.New(opts.Vectorizer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create vectorizer: %w", err)
	}
	trainTexts, trainLabels := dataset.Texts(train), dataset.Labels(train)
	X, err := vec.FitTransform(trainTexts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit vectorizer: %w", err)
	}
	report.Features = vec.NumFeatures()
	logger.Debug("Vectorizer fitted", zap.Int("features", report.Features))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	clf, err := classifier.New(opts.Classifier)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	report.Fit, err = clf.Fit(X, trainLabels, vec.NumFeatures())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit classifier: %w", err)
	}
	if !report.Fit.Converged {
		logger.Warn("Classifier stopped before converging",
			zap.Int("iterations", report.Fit.Iterations),
			zap.String("status", report.Fit.Status))
	}

	pipeline, err := NewPipeline(vec, clf)
	if err != nil {
		return nil, nil, err
	}

	report.Evaluation, err = Evaluate(pipeline, trainTexts, trainLabels, dataset.Texts(test), dataset.Labels(test))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate model: %w", err)
	}

	logger.Info("Model trained",
		zap.Float64("train_accuracy", report.Evaluation.Train.Accuracy),
		zap.Float64("test_accuracy", report.Evaluation.Test.Accuracy),
		zap.Int("iterations", report.Fit.Iterations))

	return pipeline, report, nil
}
