// Package servecmder provides the serve command for running the API server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/api"
	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/config"
	"github.com/fretwork/jar/pkg/logger"
)

type ServeCommander struct {
	listen string
	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the jar API server.

The server exposes routine listing, random picking, semantic search, and
completion endpoints over HTTP. Vector store and embedding settings come
from config.toml, environment variables (JAR_ prefix), or flags.

Examples:
  jar serve
  jar serve --listen :5050
  JAR_VECTOR_STORE_TARGET=http://localhost:8000 jar serve`

const serveShortDesc string = "Run the jar API server"

// serveFlags maps flag registry keys to flag definitions for this command.
var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "api.listen",
		Description: "Address for API server to listen on",
	},
	config.FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store provider (chroma, qdrant)",
	},
	config.FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store URL",
	},
	config.FlagVectorStoreColl: {
		Name:        "vector-store-collection",
		ViperKey:    "vector_store.collection",
		Description: "Vector store collection name",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (openai, ollama)",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
}

// serveFlagKeys lists the registry keys bound for this command.
var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStoreColl,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	var (
		vectorProvider   string
		vectorTarget     string
		vectorCollection string
		embedProvider    string
		embedTarget      string
		embedModel       string
		embedDims        uint
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)

			cmder.cfg = config.FromViper(v)
			cmder.listen = cmder.cfg.API.Listen
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &vectorTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreColl, &vectorCollection)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &embedProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &embedTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &embedModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &embedDims)

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	svc, cleanup, err := wiring.NewService(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	apiConfig := api.Config{
		ListenAddr: c.listen,
	}
	server := api.NewServer(apiConfig, svc, c.logger)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
