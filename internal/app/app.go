package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"soclisten/internal/config"
	"soclisten/internal/history"
	"soclisten/internal/reddit"
	"soclisten/internal/services"
	"soclisten/internal/textprep"
)

// App wires configuration into the pipeline services. Handlers and commands
// depend on the interfaces here, never on concrete providers, so tests can
// assemble an App around stubs.
type App struct {
	Config *config.Config

	Searcher     services.PostSearcher
	Classifier   services.Classifier
	History      *history.Store
	Orchestrator *services.Orchestrator
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	redditClient := reddit.NewClient(cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.UserAgent)
	searcher := services.NewSearchEngine(redditClient)

	generator, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}

	truncator, err := textprep.NewTruncator(cfg.Classification.MaxPostChars)
	if err != nil {
		return nil, fmt.Errorf("initializing truncator: %w", err)
	}

	classifier := services.NewBatchClassifier(generator, truncator)
	hist := history.NewStore()

	orchestrator := services.NewOrchestrator(searcher, classifier, hist)
	orchestrator.SetPacing(cfg.Pipeline.ChunkSize, time.Duration(cfg.Pipeline.PauseSeconds)*time.Second)

	log.Infof("app initialized: provider=%s model=%s chunk_size=%d",
		cfg.Classification.Provider, cfg.Classification.Model, cfg.Pipeline.ChunkSize)

	return &App{
		Config:       cfg,
		Searcher:     searcher,
		Classifier:   classifier,
		History:      hist,
		Orchestrator: orchestrator,
	}, nil
}

func newGenerator(cfg *config.Config) (services.TextGenerator, error) {
	switch cfg.Classification.Provider {
	case "gemini":
		return services.NewGeminiProvider(context.Background(), cfg.Classification.GeminiAPIKey, cfg.Classification.Model)
	case "openai":
		return services.NewOpenAIProvider(cfg.Classification.OpenAIAPIKey, cfg.Classification.Model)
	default:
		return nil, fmt.Errorf("unknown classification provider: %s", cfg.Classification.Provider)
	}
}
