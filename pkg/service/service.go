// Package service implements the retrieval and filtering logic over the
// routine store: category/state filtering, random selection,
// score-thresholded semantic search, and completion-state transitions.
// It is the shared core behind the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/embeddings"
	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

// Service applies the business rules on top of raw gateway results. It
// holds long-lived handles to the store driver and the embedder; both are
// created once per process and shared across requests.
type Service struct {
	store    store.Driver
	embedder embeddings.Embedder
	logger   *zap.Logger
	randIntn func(n int) int
}

// Option configures a Service created with New.
type Option func(*Service)

// WithRandIntn replaces the random source used for random selection.
// Tests use this to make selection deterministic.
func WithRandIntn(fn func(n int) int) Option {
	return func(s *Service) {
		s.randIntn = fn
	}
}

// New creates a Service over the given store driver and embedder.
func New(st store.Driver, embedder embeddings.Embedder, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    st,
		embedder: embedder,
		logger:   logger,
		randIntn: rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllRoutines returns every routine. An empty store yields an empty
// slice, not an error.
func (s *Service) GetAllRoutines(ctx context.Context) ([]routine.Routine, error) {
	routines, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching all routines: %w", err)
	}

	s.logger.Debug("fetched all routines",
		zap.Int("count", len(routines)),
	)

	return routines, nil
}

// parseFilters validates the category/state pair before any store call.
// An empty state defaults to not_completed; "all" widens to every state.
func parseFilters(category, state string) (routine.Category, routine.State, error) {
	cat, err := routine.ParseCategory(category)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if state == "" {
		return cat, routine.StateNotCompleted, nil
	}

	st, err := routine.ParseStateFilter(state)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return cat, st, nil
}

// GetRoutinesByCategory returns routines matching category and state.
// State defaults to not_completed when empty; "all" selects every state.
// Unrecognized values fail with ErrInvalidArgument before any store call.
func (s *Service) GetRoutinesByCategory(ctx context.Context, category, state string) ([]routine.Routine, error) {
	cat, st, err := parseFilters(category, state)
	if err != nil {
		return nil, err
	}

	routines, err := s.store.GetByCategory(ctx, cat, st)
	if err != nil {
		return nil, fmt.Errorf("fetching routines by category: %w", err)
	}

	s.logger.Debug("fetched routines by category",
		zap.String("category", category),
		zap.String("state", state),
		zap.Int("count", len(routines)),
	)

	return routines, nil
}

// GetRandomRoutineByCategory picks one routine uniformly at random from the
// set GetRoutinesByCategory would return for the same arguments. Returns
// store.ErrNotFound when that set is empty.
func (s *Service) GetRandomRoutineByCategory(ctx context.Context, category, state string) (routine.Routine, error) {
	routines, err := s.GetRoutinesByCategory(ctx, category, state)
	if err != nil {
		return routine.Routine{}, err
	}

	if len(routines) == 0 {
		return routine.Routine{}, fmt.Errorf("no routines for category %q: %w", category, store.ErrNotFound)
	}

	picked := routines[s.randIntn(len(routines))]

	s.logger.Debug("picked random routine",
		zap.String("id", picked.ID),
		zap.Int("pool", len(routines)),
	)

	return picked, nil
}

// GetNotCompletedRoutines returns every routine still marked not_completed,
// across all categories.
func (s *Service) GetNotCompletedRoutines(ctx context.Context) ([]routine.Routine, error) {
	routines, err := s.store.GetByState(ctx, routine.StateNotCompleted)
	if err != nil {
		return nil, fmt.Errorf("fetching not-completed routines: %w", err)
	}

	s.logger.Debug("fetched not-completed routines",
		zap.Int("count", len(routines)),
	)

	return routines, nil
}

// SearchRoutines embeds query and returns up to topN routines ranked by the
// store. Results keep the store's ranking order and are truncated to topN
// before thresholding; when minScore is non-nil only results with
// score <= minScore survive (distance convention, lower = more similar).
func (s *Service) SearchRoutines(ctx context.Context, query string, topN int, minScore *float32) ([]routine.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidArgument)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidArgument, topN)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	ranked, err := s.store.Query(ctx, embedding, topN)
	if err != nil {
		return nil, fmt.Errorf("searching routines: %w", err)
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	results := make([]routine.SearchResult, 0, len(ranked))
	for _, r := range ranked {
		if minScore != nil && r.Score > *minScore {
			continue
		}
		results = append(results, routine.SearchResult{
			Routine: r.Routine,
			Score:   r.Score,
		})
	}

	s.logger.Debug("searched routines",
		zap.String("query", query),
		zap.Int("ranked", len(ranked)),
		zap.Int("results", len(results)),
	)

	return results, nil
}

// MarkRoutineCompleted marks the routine as completed. Unknown ids fail
// with store.ErrNotFound. Marking an already-completed routine is a no-op
// in effect.
func (s *Service) MarkRoutineCompleted(ctx context.Context, id string) error {
	return s.setState(ctx, id, routine.StateCompleted)
}

// MarkRoutineNotCompleted marks the routine as not completed, undoing a
// previous completion.
func (s *Service) MarkRoutineNotCompleted(ctx context.Context, id string) error {
	return s.setState(ctx, id, routine.StateNotCompleted)
}

// setState is the fetch-then-update completion transition: verify the
// record exists, then merge the target state into its metadata. Only state
// changes; the embedding is never regenerated.
func (s *Service) setState(ctx context.Context, id string, state routine.State) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching routine %s: %w", id, err)
	}
	if existing == nil {
		return fmt.Errorf("routine %s: %w", id, store.ErrNotFound)
	}

	err = s.store.UpdateMetadata(ctx, id, map[string]string{
		store.FieldState: string(state),
	})
	if err != nil {
		return fmt.Errorf("updating routine %s: %w", id, err)
	}

	s.logger.Info("updated routine state",
		zap.String("id", id),
		zap.String("state", string(state)),
	)

	return nil
}
