package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptMarkApplied = "Mark as applied"
	PromptMarkIgnored = "Mark as ignored"
	PromptOpenDetails = "Show details"
	PromptBack        = "back"
	PromptExit        = "exit"
)

var errReviewExit = errors.New("exit requested")

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk the pending postings and record your decisions",
	Run: func(_ *cobra.Command, _ []string) {
		review()
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func review() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	seen := store.New(config.seenJobsPath(), logger)
	state := seen.Load()

	if state.Len() == 0 {
		logger.Info("nothing to review", zap.String("hint", "run discover first"))
		return
	}

	for {
		keys := state.Pending()
		if len(keys) == 0 {
			logger.Info("no pending postings left")
			return
		}

		items := make([]string, 0, len(keys)+1)
		for _, key := range keys {
			record := state.Jobs[key]
			items = append(items, fmt.Sprintf("%s %s / %s / %s", key, record.Title, record.Company, record.URL))
		}

		postingPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptExit),
			Size:  10,
		}

		_, selected, err := postingPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if selected == PromptExit {
			return
		}

		key := selected[:12]
		if err := decide(seen, state, key, logger); err != nil {
			if errors.Is(err, errReviewExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// decide runs the per-posting decision prompt and persists the outcome.
func decide(seen *store.Store, state *store.SeenJobs, key string, logger *zap.Logger) error {
	record, ok := state.Jobs[key]
	if !ok {
		return fmt.Errorf("there is no such posting key %s", key)
	}

	for {
		decisionPrompt := promptui.Select{
			Label: fmt.Sprintf("%s at %s", record.Title, record.Company),
			Items: []string{PromptMarkApplied, PromptMarkIgnored, PromptOpenDetails, PromptBack, PromptExit},
		}

		_, decision, err := decisionPrompt.Run()
		if err != nil {
			return err
		}

		switch decision {
		case PromptMarkApplied:
			state.SetApplied(key, true)
			if err := seen.Save(state); err != nil {
				return err
			}
			logger.Info("marked as applied", zap.String("title", record.Title))
			return nil
		case PromptMarkIgnored:
			state.SetIgnored(key, true)
			if err := seen.Save(state); err != nil {
				return err
			}
			logger.Info("marked as ignored", zap.String("title", record.Title))
			return nil
		case PromptOpenDetails:
			fmt.Printf("\n%s\n%s / %s / %s\nScraped: %s\n\n%s\n\n",
				record.Title, record.Company, record.Location, record.URL,
				record.ScrapedAt.Format("2006-01-02 15:04"), record.Description,
			)
		case PromptBack:
			return nil
		case PromptExit:
			return errReviewExit
		}
	}
}
