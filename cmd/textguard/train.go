package main

import (
	"fmt"
	"io"

	"github.com/mikey/textguard/internal/classifier"
	"github.com/mikey/textguard/internal/config"
	"github.com/mikey/textguard/internal/dataset"
	"github.com/mikey/textguard/internal/model"
	"github.com/mikey/textguard/internal/utils"
	"github.com/mikey/textguard/internal/vectorizer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the vectorizer and classifier on a labelled CSV corpus",
	Args:  cobra.NoArgs,
	RunE:  runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.String("data", "", "labelled CSV corpus (default dataset.path)")
	f.String("out", "", "directory for the fitted artifacts (default model.dir)")
	f.Int64("seed", 42, "random seed of the train/test split")
	f.Float64("test-size", 0.2, "fraction of messages held out for testing")
	f.Int("max-features", 5000, "vocabulary size limit, 0 for no limit")
	f.Int("ngram", 2, "largest n-gram size")
	f.Int("max-iter", 500, "optimiser iteration limit")
	f.String("class-weight", "balanced", "class weighting: balanced or none")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd,
		flagBinding{"data", "dataset.path"},
		flagBinding{"out", "model.dir"},
		flagBinding{"seed", "training.random_seed"},
		flagBinding{"test-size", "training.test_size"},
		flagBinding{"max-features", "vectorizer.max_features"},
		flagBinding{"ngram", "vectorizer.ngram_max"},
		flagBinding{"max-iter", "classifier.max_iter"},
		flagBinding{"class-weight", "classifier.class_weight"},
	)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ds := cfg.GetDataset()
	messages, err := dataset.LoadCSV(cmd.Context(), ds.Path, dataset.LoadOptions{
		CategoryColumn: ds.CategoryColumn,
		MessageColumn:  ds.MessageColumn,
		Encoding:       ds.Encoding,
	})
	if err != nil {
		return err
	}
	logger.Info("Loaded dataset", zap.String("path", ds.Path), zap.Int("messages", len(messages)))

	tp := utils.NewTextProcessor(logger)
	opts := trainOptions(cfg)
	opts.Prepare = tp.PrepareMessage

	pipeline, report, err := model.Train(cmd.Context(), messages, opts, logger)
	if err != nil {
		return err
	}

	dir := cfg.GetModel().Dir
	if err := model.Save(dir, pipeline); err != nil {
		return err
	}
	logger.Info("Saved model", zap.String("dir", dir))

	out := cmd.OutOrStdout()
	printReport(out, report)

	demo := cfg.GetTraining().DemoMessage
	if demo != "" {
		p, err := pipeline.Predict(tp.PrepareMessage(demo))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nMessage: %s\n", demo)
		fmt.Fprintf(out, "Prediction: %s\n", title(p.Label.String()))
		fmt.Fprintf(out, "Prediction Probability: %.2f%%\n", p.Probability*100)
	}
	return nil
}

func trainOptions(cfg *config.Config) model.TrainOptions {
	training := cfg.GetTraining()
	vec := cfg.GetVectorizer()
	clf := cfg.GetClassifier()

	return model.TrainOptions{
		TestSize: training.TestSize,
		Seed:     training.RandomSeed,
		Vectorizer: vectorizer.Options{
			Lowercase:   vec.Lowercase,
			StopWords:   vec.StopWords,
			MaxFeatures: vec.MaxFeatures,
			NgramMin:    1,
			NgramMax:    vec.NgramMax,
			MinDF:       vec.MinDF,
		},
		Classifier: classifier.Options{
			C:           clf.C,
			ClassWeight: clf.ClassWeight,
			MaxIter:     clf.MaxIter,
			Tolerance:   clf.Tolerance,
		},
	}
}

func printReport(w io.Writer, r *model.Report) {
	fmt.Fprintf(w, "Dataset: %d messages (%d spam, %d ham)\n", r.Total, r.Spam, r.Ham)
	fmt.Fprintf(w, "Split: %d train, %d test\n", r.TrainSize, r.TestSize)
	fmt.Fprintf(w, "Features: %d\n", r.Features)
	fmt.Fprintf(w, "Optimiser: %d iterations, converged: %t\n", r.Fit.Iterations, r.Fit.Converged)
	fmt.Fprintf(w, "Accuracy on training data: %.2f%%\n", r.Evaluation.Train.Accuracy*100)
	fmt.Fprintf(w, "Accuracy on test data: %.2f%%\n", r.Evaluation.Test.Accuracy*100)
	fmt.Fprintf(w, "Test precision: %.2f%%, recall: %.2f%%\n",
		r.Evaluation.Test.Precision*100, r.Evaluation.Test.Recall*100)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
