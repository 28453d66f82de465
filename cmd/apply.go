package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jobscout/jobscout/internal/apply"
	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var applyCmd = &cobra.Command{
	Use:   "apply <job-url>",
	Short: "Drive the application flow for one job up to the human-review gate",
	Long: "apply opens the job page, starts the application flow and fills the " +
		"recognized fields from the configured profile. It never submits: the flow " +
		"stops at the review gate and waits for you to finish in the browser.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runApply(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().Bool("headless", false, "run the browser headless (the review gate usually needs a visible browser)")
	applyCmd.Flags().Int("step-budget", 0, "override the form-step budget")
	applyCmd.Flags().String("screenshot", "", "path for the review-gate screenshot")
}

func runApply(cmd *cobra.Command, jobURL string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	creds, err := secrets.LoadCredentials(config.CredentialsFile)
	if err != nil {
		logger.Fatal("loading credentials", zap.Error(err))
	}
	if !creds.CanLogin() {
		logger.Fatal("applying requires site credentials",
			zap.String("hint", "set credentials-file in the configuration or JOBSCOUT_CREDENTIALS_FILE"),
		)
	}

	profile := config.Profile
	if profile == nil {
		logger.Fatal("applying requires an applicant profile",
			zap.String("hint", "fill the profile section of the configuration file"),
		)
	}

	headless := cmd.Flag("headless").Value.String() == "true"
	session, err := browser.NewChromeSession(ctx, headless, config.UserAgent)
	if err != nil {
		logger.Fatal("starting the browser", zap.Error(err))
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		logger.Fatal("opening a page", zap.Error(err))
	}

	opts := []apply.Option{}
	if budget, err := cmd.Flags().GetInt("step-budget"); err == nil && budget > 0 {
		opts = append(opts, apply.WithStepBudget(budget))
	}
	if shot := cmd.Flag("screenshot").Value.String(); shot != "" {
		opts = append(opts, apply.WithScreenshotPath(shot))
	}

	controller := apply.NewController(page, profile, creds.SiteLogin, creds.SitePassword, logger, opts...)

	result := controller.Run(ctx, jobURL)
	reportSession(logger, result)

	if result.State == apply.StateAwaitingReview {
		logger.Info("mark the job as applied with the review command once you have submitted it")
	}
}

// reportSession prints the session record so the outcome survives the closed
// browser window.
func reportSession(logger *zap.Logger, session *apply.Session) {
	pretty, _ := json.MarshalIndent(session, "", "  ")
	fmt.Println(string(pretty))

	logger.Info("application flow finished",
		zap.String("url", session.JobURL),
		zap.String("state", string(session.State)),
		zap.Int("steps_completed", len(session.StepsCompleted)),
		zap.Int("fields_filled", len(session.FilledFields)),
		zap.Int("errors", len(session.Errors)),
	)
}
