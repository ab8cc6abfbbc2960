// Package qdrant provides a Qdrant-backed store driver over its gRPC API.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

const (
	// DefaultCollectionName is the default collection name for storing routines.
	DefaultCollectionName = "routines"

	// DefaultPort is Qdrant's default gRPC port.
	DefaultPort = 6334

	// fieldText is the payload key holding the routine text. Qdrant has no
	// separate document field, so the text lives in the payload next to the
	// metadata fields.
	fieldText = "text"

	// scrollLimit bounds metadata-filtered reads. The routine collection is
	// a small seed set, so a single page is enough.
	scrollLimit = 1024
)

// Driver implements store.Driver using a Qdrant collection with cosine
// vectors.
//
// Qdrant ranks by cosine similarity, descending. Scores are converted to
// 1 - similarity before returning, so QueryResult.Score keeps the
// gateway-wide distance convention: lower = more similar, ascending order.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server host (e.g., "localhost").
	Host string

	// Port is the gRPC port. Defaults to DefaultPort if zero.
	Port int

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding vector size, used when the collection
	// must be created.
	Dimensions uint64
}

// NewDriver creates a new Qdrant store driver and ensures the collection exists.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", store.ErrUnavailable, err)
	}

	d := &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}

	if err := d.ensureCollection(context.Background(), c.Dimensions); err != nil {
		return nil, fmt.Errorf("getting or creating collection %q: %w", collection, err)
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", port),
		zap.String("collection", collection),
	)

	return d, nil
}

// ensureCollection creates the collection when it does not exist yet.
func (d *Driver) ensureCollection(ctx context.Context, dimensions uint64) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("%w: creating collection: %v", store.ErrUnavailable, err)
	}
	return nil
}

// Add stores routines with their embeddings.
func (d *Driver) Add(ctx context.Context, routines []routine.Routine, embeddings [][]float32) error {
	if len(routines) == 0 {
		return nil
	}
	if len(routines) != len(embeddings) {
		return fmt.Errorf("got %d routines but %d embeddings", len(routines), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, len(routines))
	for i, r := range routines {
		payload := store.ToMetadata(r)
		payload[fieldText] = r.Text
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(r.ID),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("adding routines: %w: %v", store.ErrUnavailable, err)
	}

	d.logger.Debug("added routines to qdrant",
		zap.Int("count", len(routines)),
	)

	return nil
}

// scroll runs a filtered payload read and normalizes the points into routines.
func (d *Driver) scroll(ctx context.Context, filter *qdrant.Filter) ([]routine.Routine, error) {
	points, err := d.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: d.collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(scrollLimit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	routines := make([]routine.Routine, len(points))
	for i, p := range points {
		routines[i] = routineFromPayload(p.Id.GetUuid(), p.Payload)
	}
	return routines, nil
}

// GetAll fetches every routine in the collection.
func (d *Driver) GetAll(ctx context.Context) ([]routine.Routine, error) {
	routines, err := d.scroll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("getting all routines: %w", err)
	}
	return routines, nil
}

// GetByID fetches a single routine. A missing ID yields (nil, nil).
func (d *Driver) GetByID(ctx context.Context, id string) (*routine.Routine, error) {
	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting routine %s: %w: %v", id, store.ErrUnavailable, err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	r := routineFromPayload(points[0].Id.GetUuid(), points[0].Payload)
	return &r, nil
}

// GetByCategory fetches routines matching category, and state unless state
// is routine.StateAny. Conditions combine as a logical AND.
func (d *Driver) GetByCategory(ctx context.Context, category routine.Category, state routine.State) ([]routine.Routine, error) {
	must := []*qdrant.Condition{
		qdrant.NewMatch(store.FieldCategory, string(category)),
	}
	if state != routine.StateAny {
		must = append(must, qdrant.NewMatch(store.FieldState, string(state)))
	}

	routines, err := d.scroll(ctx, &qdrant.Filter{Must: must})
	if err != nil {
		return nil, fmt.Errorf("getting routines by category: %w", err)
	}
	return routines, nil
}

// GetByState fetches routines matching state only.
func (d *Driver) GetByState(ctx context.Context, state routine.State) ([]routine.Routine, error) {
	routines, err := d.scroll(ctx, &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(store.FieldState, string(state)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting routines by state: %w", err)
	}
	return routines, nil
}

// Query returns the topN nearest routines to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topN int) ([]store.QueryResult, error) {
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topN)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w: %v", store.ErrUnavailable, err)
	}

	results := make([]store.QueryResult, len(points))
	for i, p := range points {
		results[i] = store.QueryResult{
			Routine: routineFromPayload(p.Id.GetUuid(), p.Payload),
			// Cosine similarity to distance, preserving ascending order.
			Score: 1 - p.Score,
		}
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// UpdateMetadata merges fields into the stored payload for id. Qdrant's
// set-payload merges keys natively, but existence is verified first so an
// unknown id surfaces as ErrNotFound rather than a silent no-op.
func (d *Driver) UpdateMetadata(ctx context.Context, id string, fields map[string]string) error {
	existing, err := d.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("routine %s: %w", id, store.ErrNotFound)
	}

	payload := make(map[string]any, len(fields))
	for k, v := range fields {
		payload[k] = v
	}

	_, err = d.client.SetPayload(ctx, &qdrant.SetPayloadPoints{
		CollectionName: d.collection,
		Payload:        qdrant.NewValueMap(payload),
		PointsSelector: qdrant.NewPointsSelector(qdrant.NewID(id)),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("updating routine %s: %w: %v", id, store.ErrUnavailable, err)
	}

	d.logger.Debug("updated routine payload",
		zap.String("id", id),
	)

	return nil
}

// Delete removes routines by ID.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(id)
	}

	_, err := d.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: d.collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("deleting routines: %w: %v", store.ErrUnavailable, err)
	}

	d.logger.Debug("deleted routines from qdrant",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases the underlying gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// routineFromPayload normalizes a point payload into a Routine.
func routineFromPayload(id string, payload map[string]*qdrant.Value) routine.Routine {
	meta := make(map[string]any, len(payload))
	var text string
	for k, v := range payload {
		if k == fieldText {
			text = v.GetStringValue()
			continue
		}
		meta[k] = v.GetStringValue()
	}
	return store.FromMetadata(id, text, meta)
}

var _ store.Driver = (*Driver)(nil)
