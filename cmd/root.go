package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talentbridge"
)

type Config struct {
	DatabaseURL string          `mapstructure:"database-url"`
	ESCO        *ESCOConfig     `mapstructure:"esco"`
	AI          *AIConfig       `mapstructure:"ai"`
	Training    *TrainingConfig `mapstructure:"training"`
}

type ESCOConfig struct {
	APIURL      string        `mapstructure:"api-url"`
	Language    string        `mapstructure:"language"`
	RateLimit   float64       `mapstructure:"rate-limit"`
	MaxRetries  int           `mapstructure:"max-retries"`
	Concurrency int           `mapstructure:"concurrency"`
	CacheFile   string        `mapstructure:"cache-file"`
	CacheTTL    time.Duration `mapstructure:"cache-ttl"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type TrainingConfig struct {
	Brave     *BraveConfig `mapstructure:"brave"`
	MaxSkills int          `mapstructure:"max-skills"`
}

type BraveConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentbridge matches job seekers to job postings through the ESCO skills taxonomy",
	}
)

// Execute executes the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	envs := map[string]string{
		"database-url":                "DATABASE_URL",
		"esco.api-url":                "ESCO_API_URL",
		"ai.gemini.api-key-file":      "GEMINI_API_KEY_FILE",
		"training.brave.api-key-file": "BRAVE_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentbridge.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("esco.language", "en")
	v.SetDefault("esco.rate-limit", 5)
	v.SetDefault("esco.max-retries", 3)
	v.SetDefault("esco.concurrency", 8)
	v.SetDefault("esco.cache-ttl", "168h")
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 500)
	v.SetDefault("training.max-skills", 5)

	if dir, err := os.UserCacheDir(); err == nil {
		v.SetDefault("esco.cache-file", filepath.Join(dir, app, "esco.db"))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: every setting has a default or an env binding.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.ESCO == nil {
		config.ESCO = &ESCOConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Training == nil {
		config.Training = &TrainingConfig{}
	}
	if config.Training.Brave == nil {
		config.Training.Brave = &BraveConfig{}
	}

	return config, nil
}
