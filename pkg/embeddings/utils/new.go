// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"
	"os"

	"github.com/fretwork/jar/pkg/embeddings"
	"github.com/fretwork/jar/pkg/embeddings/ollama"
	"github.com/fretwork/jar/pkg/embeddings/openai"
)

// apiKeyEnv is where the OpenAI key is read from when not passed explicitly.
const apiKeyEnv = "OPENAI_API_KEY"

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "openai":
		apiKey := o.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(apiKeyEnv)
		}
		return openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL: o.TargetURL,
			APIKey:  apiKey,
			Model:   o.Model,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
