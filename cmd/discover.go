package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/ai/gemini"
	"github.com/jobscout/jobscout/internal/browser"
	"github.com/jobscout/jobscout/internal/discovery"
	"github.com/jobscout/jobscout/internal/filtering"
	"github.com/jobscout/jobscout/internal/logger"
	"github.com/jobscout/jobscout/internal/notify"
	"github.com/jobscout/jobscout/internal/scrape"
	"github.com/jobscout/jobscout/internal/secrets"
	"github.com/jobscout/jobscout/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scrape the configured sources, filter the postings and record new ones",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Bool("headless", true, "run the browser headless")
	discoverCmd.Flags().Bool("no-notify", false, "skip the email digest even when mail credentials are present")
}

// discover runs one discovery pass. It always exits zero: a failed source, a
// failed filter step or a failed notification loses that capability for this
// run, nothing else.
func discover(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobscout discovery", zap.String("version", version))

	creds, err := secrets.LoadCredentials(config.CredentialsFile)
	if err != nil {
		logger.Fatal("loading credentials", zap.Error(err))
	}

	session, adapters := buildSurface(ctx, cmd, config, creds, logger)
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		logger.Error("opening a page", zap.Error(err))
		return
	}

	if creds.CanLogin() {
		if err := scrape.Login(page, creds.SiteLogin, creds.SitePassword); err != nil {
			// Discovery continues in guest mode: the login-gated source
			// yields nothing, the rest still work.
			logger.Warn("login failed, continuing as guest", zap.Error(err))
			adapters = guestAdapters(logger)
		}
	}

	seen := store.New(config.seenJobsPath(), logger)
	filters := store.NewFiltersStore(config.filtersPath(), logger)
	steps, deps := prepareDiscoveryFilters(ctx, config, logger)

	orchestrator := discovery.NewOrchestrator(adapters, seen, filters, steps, deps, logger)

	result, err := orchestrator.Run(ctx, page)
	if err != nil {
		logger.Error("discovery failed", zap.Error(err))
		return
	}

	if result.Delta.Len() == 0 {
		logger.Info("no new postings found")
		return
	}

	if cmd.Flag("no-notify").Value.String() == "true" {
		return
	}

	if !creds.CanNotify() {
		logger.Info("mail credentials are not configured, skipping the digest",
			zap.Int("new_postings", result.Delta.Len()),
		)
		return
	}

	notifier := notify.NewEmailNotifier(creds.MailAddress, creds.MailPassword, logger)
	if err := notifier.Notify(result.Delta); err != nil {
		logger.Error("sending the digest failed", zap.Error(err))
	}
}

// buildSurface picks the browsing surface: a live browser when the site login
// is available, a plain HTTP client in guest mode otherwise. Guest mode only
// covers the sources that serve search results without authentication.
func buildSurface(ctx context.Context, cmd *cobra.Command, config *Config, creds *secrets.Credentials, logger *zap.Logger) (browser.Session, []scrape.Adapter) {
	engine := strings.TrimSpace(strings.ToLower(config.Engine))
	if engine == "static" {
		logger.Info("static engine configured, scraping in guest mode")
		return browser.NewStaticSession(config.UserAgent), guestAdapters(logger)
	}

	if creds.CanLogin() || engine == "chrome" {
		headless := cmd.Flag("headless").Value.String() == "true"
		session, err := browser.NewChromeSession(ctx, headless, config.UserAgent)
		if err != nil {
			logger.Warn("starting the browser failed, falling back to guest mode", zap.Error(err))
			return browser.NewStaticSession(config.UserAgent), guestAdapters(logger)
		}
		if !creds.CanLogin() {
			// The login-gated source has nothing to offer a guest browser.
			return session, guestAdapters(logger)
		}
		return session, []scrape.Adapter{
			scrape.NewLinkedIn(logger),
			scrape.NewIndeed(logger),
		}
	}

	logger.Info("no site credentials, scraping in guest mode")
	return browser.NewStaticSession(config.UserAgent), guestAdapters(logger)
}

func guestAdapters(logger *zap.Logger) []scrape.Adapter {
	return []scrape.Adapter{scrape.NewIndeed(logger)}
}

func prepareDiscoveryFilters(ctx context.Context, config *Config, logger *zap.Logger) ([]filtering.Filter, filtering.Deps) {
	deps := filtering.Deps{
		Logger:  logger,
		Profile: config.Profile,
	}

	aiFilter := filtering.NewAIFit(false)
	if config.AI != nil && config.AI.Enabled {
		matcher, err := newAIMatcher(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI filter", zap.Error(err))
		} else if config.Profile == nil {
			logger.Warn("skipping AI filter", zap.String("reason", "an applicant profile is required"))
		} else {
			deps.Matcher = matcher
			aiFilter = filtering.NewAIFit(true)
		}
	}

	steps := []filtering.Filter{
		filtering.NewTitleRelevance(),
		filtering.NewLocation(),
		filtering.NewExcludeKeywords(),
		aiFilter,
	}

	return steps, deps
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, base *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when the ai filter is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:    "gemini api key",
		File:    cfg.Gemini.APIKeyFile,
		EnvFile: "GEMINI_API_KEY_FILE",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.WithFields(base, logger.StringFields(
		logger.StringField{Key: "provider", Value: "gemini"},
		logger.StringField{Key: "model", Value: generator.Model()},
	)...)
	matcherLogger = matcherLogger.With(zap.Float64("minimum_fit_score", minScore))

	return gemini.NewMatcher(generator, matcherLogger, minScore, cfg.Gemini.MaxLogLength), nil
}
