// Package store defines the vector-store gateway for routine persistence:
// a driver interface that translates domain-level queries into calls against
// an externally-owned vector collection and normalizes raw results back
// into the routine shape.
package store

import (
	"context"

	"github.com/fretwork/jar/pkg/routine"
)

// Metadata field names shared by all drivers. The persisted layout is one
// record per routine: the store-native id, the routine text as the
// document, and {category, tags, state} as metadata.
const (
	FieldCategory = "category"
	FieldTags     = "tags"
	FieldState    = "state"
)

// QueryResult is a routine ranked by a nearest-neighbor query.
//
// Score is the store's native distance: lower = more similar. Drivers over
// similarity-native stores convert before returning so that every caller
// sees the same convention.
type QueryResult struct {
	routine.Routine

	Score float32
}

// Driver handles storage and retrieval of routines in a vector collection.
// Every method is a network call to the external store; there is no local
// caching, so results always reflect the stored state at call time.
type Driver interface {
	// Add stores routines alongside their embeddings, which must be
	// parallel slices. Records with an existing ID are overwritten.
	Add(ctx context.Context, routines []routine.Routine, embeddings [][]float32) error

	// GetAll fetches every routine in the collection.
	GetAll(ctx context.Context) ([]routine.Routine, error)

	// GetByID fetches a single routine. A missing ID yields (nil, nil);
	// errors are reserved for store failures.
	GetByID(ctx context.Context, id string) (*routine.Routine, error)

	// GetByCategory fetches routines matching category, further narrowed
	// by state unless state is routine.StateAny. Both filters are pushed
	// down to the store and combine as a logical AND.
	GetByCategory(ctx context.Context, category routine.Category, state routine.State) ([]routine.Routine, error)

	// GetByState fetches routines matching state only.
	GetByState(ctx context.Context, state routine.State) ([]routine.Routine, error)

	// Query returns the topN nearest routines to embedding, ordered by
	// ascending distance (see QueryResult.Score).
	Query(ctx context.Context, embedding []float32, topN int) ([]QueryResult, error)

	// UpdateMetadata merges fields into the stored metadata for id.
	// Returns ErrNotFound when id does not exist.
	UpdateMetadata(ctx context.Context, id string, fields map[string]string) error

	// Delete removes routines by ID.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}

// FromMetadata normalizes a stored document and its metadata map into a
// Routine. Missing state defaults to not_completed, matching the seed-time
// default.
func FromMetadata(id, text string, meta map[string]any) routine.Routine {
	r := routine.Routine{
		ID:    id,
		Text:  text,
		State: routine.StateNotCompleted,
	}
	if meta == nil {
		return r
	}
	if category, ok := meta[FieldCategory].(string); ok {
		r.Category = routine.Category(category)
	}
	if tags, ok := meta[FieldTags].(string); ok {
		r.Tags = routine.SplitTags(tags)
	}
	if state, ok := meta[FieldState].(string); ok && state != "" {
		r.State = routine.State(state)
	}
	return r
}

// ToMetadata flattens a routine into the metadata map stored alongside its
// document text.
func ToMetadata(r routine.Routine) map[string]any {
	return map[string]any{
		FieldCategory: string(r.Category),
		FieldTags:     routine.JoinTags(r.Tags),
		FieldState:    string(r.State),
	}
}
