package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/embeddings"
	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/service"
	"github.com/fretwork/jar/pkg/store"
)

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFromErr maps service errors onto HTTP status codes. Validation
// failures are the caller's fault; missing records are 404; backend
// outages surface as 503 so clients can retry.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, embeddings.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFromErr(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListRoutines handles GET /api/routines.
// Query parameters:
//   - category (optional): filter to one category
//   - state (optional): with category, filters by state ("all" disables the
//     state filter); alone, only "not_completed" is supported
func (s *Server) handleListRoutines(c *fiber.Ctx) error {
	category := c.Query("category")
	state := c.Query("state")

	var (
		routines []routine.Routine
		err      error
	)

	switch {
	case category != "":
		routines, err = s.service.GetRoutinesByCategory(c.Context(), category, state)

	case state == string(routine.StateNotCompleted):
		routines, err = s.service.GetNotCompletedRoutines(c.Context())

	case state != "":
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "state filter requires a category unless state is not_completed",
		})

	default:
		routines, err = s.service.GetAllRoutines(c.Context())
	}

	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(routines)
}

// handleRandomRoutine handles GET /api/routines/random.
// Query parameters:
//   - category (required): category to pick from
//   - state (optional, default not_completed): state filter, "all" disables it
func (s *Server) handleRandomRoutine(c *fiber.Ctx) error {
	category := c.Query("category")
	if category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "category parameter is required",
		})
	}

	picked, err := s.service.GetRandomRoutineByCategory(c.Context(), category, c.Query("state"))
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(picked)
}

// handleSearchRoutines handles GET /api/routines/search.
// Query parameters:
//   - query (required): the search query text
//   - top_n (optional, default 5): number of results to return
//   - min_score (optional): maximum distance a result may have
func (s *Server) handleSearchRoutines(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topN := 5
	if topNStr := c.Query("top_n"); topNStr != "" {
		parsed, err := strconv.Atoi(topNStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_n must be a positive integer",
			})
		}
		topN = parsed
	}

	var minScore *float32
	if minScoreStr := c.Query("min_score"); minScoreStr != "" {
		parsed, err := strconv.ParseFloat(minScoreStr, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "min_score must be a number",
			})
		}
		v := float32(parsed)
		minScore = &v
	}

	results, err := s.service.SearchRoutines(c.Context(), query, topN, minScore)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(results)
}

// handleCompleteRoutine handles PUT /api/routines/:id/complete.
func (s *Server) handleCompleteRoutine(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.service.MarkRoutineCompleted(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(map[string]string{
		"id":    id,
		"state": string(routine.StateCompleted),
	})
}

// handleUncompleteRoutine handles PUT /api/routines/:id/uncomplete.
func (s *Server) handleUncompleteRoutine(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.service.MarkRoutineNotCompleted(c.Context(), id); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(map[string]string{
		"id":    id,
		"state": string(routine.StateNotCompleted),
	})
}
