package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// ClientService implements CRUD, listing and search for client profiles.
type ClientService struct {
	repo        ports.ClientRepository
	searchLimit int
	logger      zerolog.Logger
}

func NewClientService(repo ports.ClientRepository, searchLimit int, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, searchLimit: searchLimit, logger: logger}
}

func (s *ClientService) Create(ctx context.Context, fields map[string]any) (string, error) {
	if err := domain.ValidateNewClient(fields); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	doc := cloneFields(fields)
	delete(doc, "_id")
	delete(doc, "id")
	doc["created_at"] = now
	doc["updated_at"] = now

	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to insert client")
		return "", err
	}

	s.logger.Info().Str("client_id", id).Msg("client created")
	return id, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (map[string]any, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, q ports.ClientListQuery) (*ports.Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list clients")
		return nil, err
	}

	return &ports.Page{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: totalPages(total, q.PerPage),
	}, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", id).Msg("client deleted")
	return nil
}

func (s *ClientService) Search(ctx context.Context, term string) ([]map[string]any, error) {
	results, err := s.repo.Search(ctx, term, s.searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("term", term).Msg("client search failed")
		return nil, err
	}
	return results, nil
}
