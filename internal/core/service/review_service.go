package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// ReviewService exposes the read-only listing over the reviews collection.
type ReviewService struct {
	repo   ports.ReviewRepository
	logger zerolog.Logger
}

func NewReviewService(repo ports.ReviewRepository, logger zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, logger: logger}
}

func (s *ReviewService) List(ctx context.Context) ([]map[string]any, error) {
	reviews, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list reviews")
		return nil, err
	}
	return reviews, nil
}
