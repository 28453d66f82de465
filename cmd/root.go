package cmd

import (
	"errors"
	"log"
	"path/filepath"

	"github.com/jobscout/jobscout/internal/apply"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobscout"

	seenJobsFile = "seen_jobs.json"
	filtersFile  = "job_filters.json"

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	DataDir         string         `mapstructure:"data-dir"`
	UserAgent       string         `mapstructure:"user-agent"`
	CredentialsFile string         `mapstructure:"credentials-file"`
	// Engine selects the browsing surface: "auto" (default) picks the live
	// browser when site credentials are present, "chrome" forces it and
	// "static" forces plain-HTTP guest mode.
	Engine  string         `mapstructure:"engine"`
	Profile *apply.Profile `mapstructure:"profile"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Provider        string        `mapstructure:"provider"`
	MinimumFitScore float64       `mapstructure:"minimum-fit-score"`
	Gemini          *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout discovers job postings, filters them and drives applications up to the review gate",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("credentials-file", "JOBSCOUT_CREDENTIALS_FILE"); err != nil {
		log.Fatalf("binding JOBSCOUT_CREDENTIALS_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetDefault("data-dir", ".")
	viper.SetDefault("user-agent", defaultUserAgent)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// The whole tool works on defaults, so a missing config file is fine.
	// An existing but unparseable one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.DataDir == "" {
		config.DataDir = "."
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	return config, nil
}

func (c *Config) seenJobsPath() string {
	return filepath.Join(c.DataDir, seenJobsFile)
}

func (c *Config) filtersPath() string {
	return filepath.Join(c.DataDir, filtersFile)
}
