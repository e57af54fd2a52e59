package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/gazetap/pkg/session"
	"github.com/papercomputeco/gazetap/pkg/storage"
)

const (
	defaultSampleLimit = 100
	maxSampleLimit     = 10000
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsResponse combines live session counters with the stored sample count.
type StatsResponse struct {
	Session       session.Stats `json:"session"`
	StoredSamples int           `json:"stored_samples"`
}

// SamplesResponse lists recent samples, most recent first.
type SamplesResponse struct {
	Samples []*storage.Record `json:"samples"`
	Count   int               `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns the session counters.
func (s *Server) handleStats(c *fiber.Ctx) error {
	count, err := s.storer.Count(c.Context())
	if err != nil {
		s.logger.Error("failed to count samples", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count samples"})
	}

	return c.JSON(StatsResponse{
		Session:       s.stats.Stats(),
		StoredSamples: count,
	})
}

// handleListSamples returns recent samples. The limit query parameter
// defaults to 100.
func (s *Server) handleListSamples(c *fiber.Ctx) error {
	limit := defaultSampleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSampleLimit {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "limit must be an integer between 1 and " + strconv.Itoa(maxSampleLimit),
			})
		}
		limit = n
	}

	records, err := s.storer.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list samples", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list samples"})
	}

	if records == nil {
		records = []*storage.Record{}
	}

	return c.JSON(SamplesResponse{Samples: records, Count: len(records)})
}

// handleGetSample returns a single sample by its ID.
func (s *Server) handleGetSample(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid sample id"})
	}

	rec, err := s.storer.Get(c.Context(), id)
	var notFound storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "sample not found"})
	case err != nil:
		s.logger.Error("failed to get sample", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get sample"})
	}

	return c.JSON(rec)
}
