// Package chroma provides a Chroma-backed store driver over its REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

const (
	// DefaultCollectionName is the default collection name for storing routines.
	DefaultCollectionName = "routines"

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements store.Driver using Chroma's REST API.
//
// Chroma ranks nearest-neighbor results by distance, ascending. Distances
// are passed through unchanged, so QueryResult.Score keeps the gateway-wide
// lower-is-more-similar convention.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *zap.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string
}

// NewDriver creates a new Chroma store driver and ensures the collection exists.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}

	collectionID, err := d.getOrCreateCollection(context.Background())
	if err != nil {
		return nil, fmt.Errorf("getting or creating collection %q: %w", collectionName, err)
	}
	d.collectionID = collectionID

	logger.Info("connected to Chroma",
		zap.String("url", c.URL),
		zap.String("collection", collectionName),
		zap.String("collection_id", collectionID),
	)

	return d, nil
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s%s/%s", d.baseURL, collectionsPath, d.collectionName)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("creating get request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var collection chromaCollection
		if err := json.NewDecoder(resp.Body).Decode(&collection); err != nil {
			return "", fmt.Errorf("decoding collection response: %w", err)
		}
		return collection.ID, nil
	}

	// Collection doesn't exist, create it
	createBody := map[string]string{"name": d.collectionName}
	var collection chromaCollection
	if err := d.post(ctx, d.baseURL+collectionsPath, createBody, &collection); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return collection.ID, nil
}

// post sends a JSON request to the given URL and decodes the response into
// out (when out is non-nil). Transport failures and non-2xx statuses are
// wrapped with store.ErrUnavailable.
func (d *Driver) post(ctx context.Context, url string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", store.ErrUnavailable, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// collectionURL builds the endpoint URL for an operation on the collection.
func (d *Driver) collectionURL(op string) string {
	return fmt.Sprintf("%s%s/%s/%s", d.baseURL, collectionsPath, d.collectionID, op)
}

// Add stores routines with their embeddings.
func (d *Driver) Add(ctx context.Context, routines []routine.Routine, embeddings [][]float32) error {
	if len(routines) == 0 {
		return nil
	}
	if len(routines) != len(embeddings) {
		return fmt.Errorf("got %d routines but %d embeddings", len(routines), len(embeddings))
	}

	reqBody := chromaAddRequest{
		IDs:        make([]string, len(routines)),
		Embeddings: embeddings,
		Documents:  make([]string, len(routines)),
		Metadatas:  make([]map[string]any, len(routines)),
	}
	for i, r := range routines {
		reqBody.IDs[i] = r.ID
		reqBody.Documents[i] = r.Text
		reqBody.Metadatas[i] = store.ToMetadata(r)
	}

	if err := d.post(ctx, d.collectionURL("add"), reqBody, nil); err != nil {
		return fmt.Errorf("adding routines: %w", err)
	}

	d.logger.Debug("added routines to chroma",
		zap.Int("count", len(routines)),
	)

	return nil
}

// get runs a /get call and normalizes the parallel id/document/metadata
// arrays into routines.
func (d *Driver) get(ctx context.Context, reqBody chromaGetRequest) ([]routine.Routine, error) {
	reqBody.Include = []string{"documents", "metadatas"}

	var getResp chromaGetResponse
	if err := d.post(ctx, d.collectionURL("get"), reqBody, &getResp); err != nil {
		return nil, err
	}

	routines := make([]routine.Routine, len(getResp.IDs))
	for i, id := range getResp.IDs {
		var text string
		if i < len(getResp.Documents) {
			text = getResp.Documents[i]
		}
		var meta map[string]any
		if i < len(getResp.Metadatas) {
			meta = getResp.Metadatas[i]
		}
		routines[i] = store.FromMetadata(id, text, meta)
	}
	return routines, nil
}

// GetAll fetches every routine in the collection.
func (d *Driver) GetAll(ctx context.Context) ([]routine.Routine, error) {
	routines, err := d.get(ctx, chromaGetRequest{})
	if err != nil {
		return nil, fmt.Errorf("getting all routines: %w", err)
	}
	return routines, nil
}

// GetByID fetches a single routine. A missing ID yields (nil, nil).
func (d *Driver) GetByID(ctx context.Context, id string) (*routine.Routine, error) {
	routines, err := d.get(ctx, chromaGetRequest{IDs: []string{id}})
	if err != nil {
		return nil, fmt.Errorf("getting routine %s: %w", id, err)
	}
	if len(routines) == 0 {
		return nil, nil
	}
	return &routines[0], nil
}

// GetByCategory fetches routines matching category, and state unless state
// is routine.StateAny. Chroma requires $and for combined equality filters.
func (d *Driver) GetByCategory(ctx context.Context, category routine.Category, state routine.State) ([]routine.Routine, error) {
	where := map[string]any{store.FieldCategory: string(category)}
	if state != routine.StateAny {
		where = map[string]any{
			"$and": []map[string]any{
				{store.FieldCategory: string(category)},
				{store.FieldState: string(state)},
			},
		}
	}

	routines, err := d.get(ctx, chromaGetRequest{Where: where})
	if err != nil {
		return nil, fmt.Errorf("getting routines by category: %w", err)
	}
	return routines, nil
}

// GetByState fetches routines matching state only.
func (d *Driver) GetByState(ctx context.Context, state routine.State) ([]routine.Routine, error) {
	routines, err := d.get(ctx, chromaGetRequest{
		Where: map[string]any{store.FieldState: string(state)},
	})
	if err != nil {
		return nil, fmt.Errorf("getting routines by state: %w", err)
	}
	return routines, nil
}

// Query returns the topN nearest routines to the given embedding, ordered
// by Chroma's distance, ascending.
func (d *Driver) Query(ctx context.Context, embedding []float32, topN int) ([]store.QueryResult, error) {
	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topN,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var queryResp chromaQueryResponse
	if err := d.post(ctx, d.collectionURL("query"), reqBody, &queryResp); err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}

	// Only the first group matters; we query with a single embedding.
	if len(queryResp.IDs) == 0 || len(queryResp.IDs[0]) == 0 {
		return nil, nil
	}

	ids := queryResp.IDs[0]
	results := make([]store.QueryResult, len(ids))
	for i, id := range ids {
		var text string
		if len(queryResp.Documents) > 0 && i < len(queryResp.Documents[0]) {
			text = queryResp.Documents[0][i]
		}
		var meta map[string]any
		if len(queryResp.Metadatas) > 0 && i < len(queryResp.Metadatas[0]) {
			meta = queryResp.Metadatas[0][i]
		}
		results[i] = store.QueryResult{
			Routine: store.FromMetadata(id, text, meta),
		}
		if len(queryResp.Distances) > 0 && i < len(queryResp.Distances[0]) {
			results[i].Score = queryResp.Distances[0][i]
		}
	}

	d.logger.Debug("queried chroma",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// UpdateMetadata merges fields into the stored metadata for id. Chroma's
// update replaces the metadata record wholesale, so the current metadata is
// fetched first and merged locally.
func (d *Driver) UpdateMetadata(ctx context.Context, id string, fields map[string]string) error {
	var getResp chromaGetResponse
	err := d.post(ctx, d.collectionURL("get"), chromaGetRequest{
		IDs:     []string{id},
		Include: []string{"metadatas"},
	}, &getResp)
	if err != nil {
		return fmt.Errorf("getting routine %s: %w", id, err)
	}
	if len(getResp.IDs) == 0 {
		return fmt.Errorf("routine %s: %w", id, store.ErrNotFound)
	}

	meta := map[string]any{}
	if len(getResp.Metadatas) > 0 && getResp.Metadatas[0] != nil {
		meta = getResp.Metadatas[0]
	}
	for k, v := range fields {
		meta[k] = v
	}

	reqBody := chromaUpdateRequest{
		IDs:       []string{id},
		Metadatas: []map[string]any{meta},
	}
	if err := d.post(ctx, d.collectionURL("update"), reqBody, nil); err != nil {
		return fmt.Errorf("updating routine %s: %w", id, err)
	}

	d.logger.Debug("updated routine metadata",
		zap.String("id", id),
	)

	return nil
}

// Delete removes routines by ID.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.post(ctx, d.collectionURL("delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting routines: %w", err)
	}

	d.logger.Debug("deleted routines from chroma",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ store.Driver = (*Driver)(nil)
