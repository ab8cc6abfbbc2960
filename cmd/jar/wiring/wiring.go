// Package wiring builds the service and its backing drivers from config.
// Commands that talk to the store directly (seed, list, pick, search,
// complete) share this instead of each assembling the stack themselves.
package wiring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/config"
	"github.com/fretwork/jar/pkg/embeddings"
	embeddingutils "github.com/fretwork/jar/pkg/embeddings/utils"
	"github.com/fretwork/jar/pkg/service"
	"github.com/fretwork/jar/pkg/store"
	storeutils "github.com/fretwork/jar/pkg/store/utils"
)

// NewDrivers assembles the store driver and embedder from config. The
// returned cleanup func closes both and must be called when done.
func NewDrivers(cfg *config.Config, logger *zap.Logger) (store.Driver, embeddings.Embedder, func(), error) {
	driver, err := storeutils.NewDriver(&storeutils.NewDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		TargetURL:    cfg.VectorStore.Target,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating vector store driver: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		driver.Close()
		return nil, nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	cleanup := func() {
		if err := embedder.Close(); err != nil {
			logger.Warn("closing embedder", zap.Error(err))
		}
		if err := driver.Close(); err != nil {
			logger.Warn("closing store driver", zap.Error(err))
		}
	}

	return driver, embedder, cleanup, nil
}

// NewService assembles a Service from config. The returned cleanup func
// closes the underlying store and embedder and must be called when done.
func NewService(cfg *config.Config, logger *zap.Logger) (*service.Service, func(), error) {
	driver, embedder, cleanup, err := NewDrivers(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return service.New(driver, embedder, logger), cleanup, nil
}

// LoadConfig resolves the effective config for a command: dotdir file
// values merged over defaults.
func LoadConfig(configDir string) (*config.Config, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return cfg, nil
}
