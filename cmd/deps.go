package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/spigell/talentbridge/internal/ai"
	"github.com/spigell/talentbridge/internal/ai/gemini"
	"github.com/spigell/talentbridge/internal/esco"
	"github.com/spigell/talentbridge/internal/logger"
	"github.com/spigell/talentbridge/internal/secrets"
	"github.com/spigell/talentbridge/internal/store"
	"github.com/spigell/talentbridge/internal/talent"
	"github.com/spigell/talentbridge/internal/taxcache"
	"github.com/spigell/talentbridge/internal/training"
	"go.uber.org/zap"
)

// deps carries what a command needs. close releases whatever was opened.
type deps struct {
	logger  *zap.Logger
	config  *Config
	esco    *esco.Client
	cache   *taxcache.Cache
	store   *store.Store
	service *talent.Service
}

// needs selects the parts a command builds on top of the logger and config.
type needs struct {
	taxonomy bool
	store    bool
	ai       bool
}

func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

// mustDeps builds the dependencies or stops the program.
func mustDeps(ctx context.Context, n needs) *deps {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	d := &deps{logger: logger, config: config}

	if n.taxonomy || n.store {
		d.esco, d.cache, err = newTaxonomy(config.ESCO, logger)
		if err != nil {
			logger.Fatal("creating the taxonomy client", zap.Error(err))
		}
	}

	if !n.store {
		return d
	}

	if config.DatabaseURL == "" {
		logger.Fatal("database url is required (set database-url or DATABASE_URL)")
	}

	d.store, err = store.Connect(ctx, config.DatabaseURL, logger.Named("store"))
	if err != nil {
		logger.Fatal("connecting to the database", zap.Error(err))
	}

	var assistant ai.Assistant
	if n.ai {
		assistant, err = newAssistant(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("continuing without the ai assistant", zap.Error(err))
			assistant = nil
		}
	}

	trainer, err := newTrainer(config.Training, assistant, logger)
	if err != nil {
		logger.Fatal("creating the training search", zap.Error(err))
	}

	d.service = talent.New(d.esco, d.store, assistant, trainer, logger)
	return d
}

func (d *deps) close() {
	if d.store != nil {
		d.store.Close()
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			d.logger.Warn("closing the taxonomy cache", zap.Error(err))
		}
	}
	_ = d.logger.Sync()
}

func newTaxonomy(cfg *ESCOConfig, logger *zap.Logger) (*esco.Client, *taxcache.Cache, error) {
	client := esco.New(logger.Named("esco"), esco.Config{
		APIURL:      cfg.APIURL,
		Language:    cfg.Language,
		RateLimit:   cfg.RateLimit,
		MaxRetries:  cfg.MaxRetries,
		Concurrency: cfg.Concurrency,
	})

	if cfg.CacheFile == "" {
		return client, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache directory: %w", err)
	}

	cache, err := taxcache.Open(cfg.CacheFile, cfg.CacheTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using taxonomy cache", zap.String("file", cfg.CacheFile), zap.Duration("ttl", cfg.CacheTTL))

	return client.WithCache(cache), cache, nil
}

// newAssistant returns nil when ai is disabled.
func newAssistant(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Assistant, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
		Value: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, logger.Named("gemini"))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return gemini.NewAssistant(generator, cfg.Gemini.MaxLogLength, logger), nil
}

func newTrainer(cfg *TrainingConfig, extractor ai.Assistant, logger *zap.Logger) (*training.Finder, error) {
	apiKey, err := secrets.Optional(secrets.Source{
		Name:  "brave api key",
		File:  cfg.Brave.APIKeyFile,
		Env:   "BRAVE_API_KEY",
		Value: cfg.Brave.APIKey,
	})
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		logger.Debug("brave api key is not configured, training search returns nothing")
	}

	trainingLogger := logger.Named("training")
	return training.NewFinder(training.NewBrave(apiKey, trainingLogger), extractor, cfg.MaxSkills, trainingLogger), nil
}

// printJSON writes v to stdout. Logs go to stderr, so output stays parseable.
func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(pretty))
	return err
}
