// Package seed loads routine definitions from a JSON file and populates the
// vector store with their embeddings.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/embeddings"
	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

// Record is one routine definition in a seed file. State is optional and
// defaults to not_completed.
type Record struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	State    string   `json:"state,omitempty"`
}

// Result reports what Build did.
type Result struct {
	// Seeded is the number of routines written to the store.
	Seeded int

	// Skipped is true when the store was already populated and force was
	// not set.
	Skipped bool
}

// LoadFile parses a seed file and validates every record. IDs are not part
// of the file format; Build assigns fresh ones.
func LoadFile(path string) ([]routine.Routine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	routines := make([]routine.Routine, 0, len(records))
	for i, rec := range records {
		state := rec.State
		if state == "" {
			state = string(routine.StateNotCompleted)
		}

		r := routine.Routine{
			Text:     rec.Text,
			Category: routine.Category(rec.Category),
			Tags:     rec.Tags,
			State:    routine.State(state),
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		routines = append(routines, r)
	}

	return routines, nil
}

// Build embeds routines and writes them to the store. A populated store is
// left untouched unless force is set, in which case the existing records
// are deleted first. Each routine gets a fresh uuid.
func Build(ctx context.Context, st store.Driver, embedder embeddings.Embedder, routines []routine.Routine, force bool, logger *zap.Logger) (*Result, error) {
	existing, err := st.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking existing routines: %w", err)
	}

	if len(existing) > 0 {
		if !force {
			logger.Info("store already populated, skipping seed",
				zap.Int("existing", len(existing)),
			)
			return &Result{Skipped: true}, nil
		}

		ids := make([]string, 0, len(existing))
		for _, r := range existing {
			ids = append(ids, r.ID)
		}
		if err := st.Delete(ctx, ids); err != nil {
			return nil, fmt.Errorf("clearing existing routines: %w", err)
		}

		logger.Info("cleared existing routines",
			zap.Int("deleted", len(ids)),
		)
	}

	if len(routines) == 0 {
		return &Result{}, nil
	}

	texts := make([]string, 0, len(routines))
	for _, r := range routines {
		texts = append(texts, r.Text)
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding seed routines: %w", err)
	}

	seeded := make([]routine.Routine, 0, len(routines))
	for _, r := range routines {
		r.ID = uuid.New().String()
		seeded = append(seeded, r)
	}

	if err := st.Add(ctx, seeded, vectors); err != nil {
		return nil, fmt.Errorf("adding seed routines: %w", err)
	}

	logger.Info("seeded routines",
		zap.Int("count", len(seeded)),
	)

	return &Result{Seeded: len(seeded)}, nil
}
