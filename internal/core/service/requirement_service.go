package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

const defaultPerPage = 10

// RequirementService implements requirement CRUD, listing, search and
// statistics on top of the repositories. It also owns the denormalization
// between submissions and client profiles: both the derived insert on
// create and the email-match sync on update are best-effort secondary
// writes with no transaction around them.
type RequirementService struct {
	repo        ports.RequirementRepository
	clients     ports.ClientRepository
	statsCache  ports.StatsCache // nil disables caching
	searchLimit int              // <= 0 means unbounded
	logger      zerolog.Logger
}

func NewRequirementService(
	repo ports.RequirementRepository,
	clients ports.ClientRepository,
	statsCache ports.StatsCache,
	searchLimit int,
	logger zerolog.Logger,
) *RequirementService {
	return &RequirementService{
		repo:        repo,
		clients:     clients,
		statsCache:  statsCache,
		searchLimit: searchLimit,
		logger:      logger,
	}
}

// Create validates the full required-field set, stamps metadata, persists
// the submission and derives a client profile from the requestor fields.
// Every submission inserts a new client row; duplicates are not deduplicated.
func (s *RequirementService) Create(ctx context.Context, fields map[string]any) (string, error) {
	if err := domain.ValidateNewRequirement(fields); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	doc := cloneFields(fields)
	delete(doc, "_id")
	delete(doc, "id")
	doc["created_at"] = now
	doc["updated_at"] = now
	if _, ok := doc["status"]; !ok {
		doc["status"] = domain.StatusPending
	}

	id, err := s.repo.Insert(ctx, doc)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to insert requirement")
		return "", err
	}

	s.logger.Info().Str("requirement_id", id).Str("department", stringField(doc, "department")).Msg("requirement created")
	s.deriveClient(ctx, doc, now)

	return id, nil
}

// Get returns the requirement with its identifier rendered as a string.
func (s *RequirementService) Get(ctx context.Context, id string) (map[string]any, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns one page of requirements. Filters are restricted to the
// allow-listed fields; anything else is dropped. Default sort is
// created_at descending.
func (s *RequirementService) List(ctx context.Context, q ports.ListQuery) (*ports.Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.SortBy == "" {
		q.SortBy = "created_at"
	}
	if q.SortDir != 1 {
		q.SortDir = -1
	}

	allowed := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		if domain.RequirementFilterFields[k] && v != "" {
			allowed[k] = v
		}
	}
	q.Filters = allowed

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list requirements")
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

// Update applies a partial update under the allow-list policy: identifier
// keys are stripped, any remaining unknown key is rejected. When the
// payload touches requestor contact fields, the matching client profile is
// re-synced by email.
func (s *RequirementService) Update(ctx context.Context, id string, fields map[string]any) error {
	update := cloneFields(fields)
	delete(update, "_id")
	delete(update, "id")

	syncFields := extractContactSync(update)
	// city rides along with contact updates for the profile sync but is
	// not a requirement field itself.
	delete(update, "city")

	if err := domain.ValidateRequirementUpdate(update); err != nil {
		return err
	}
	if len(update) == 0 && len(syncFields) == 0 {
		return nil
	}

	update["updated_at"] = time.Now().UTC()
	if err := s.repo.Update(ctx, id, update); err != nil {
		return err
	}

	if len(syncFields) > 0 {
		s.syncClient(ctx, id, update, syncFields)
	}

	s.logger.Info().Str("requirement_id", id).Msg("requirement updated")
	return nil
}

// Delete removes the requirement only; derived client profiles are never
// cascaded.
func (s *RequirementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("requirement_id", id).Msg("requirement deleted")
	return nil
}

// Search matches the term case-insensitively against projectTitle,
// description, requestorName and department. The result set is capped only
// when a search limit is configured.
func (s *RequirementService) Search(ctx context.Context, term string) ([]map[string]any, error) {
	results, err := s.repo.Search(ctx, term, s.searchLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("term", term).Msg("requirement search failed")
		return nil, err
	}
	return results, nil
}

// Stats returns grouped requirement counts, served from the snapshot cache
// when one is configured and warm. Cache failures fall through to the live
// aggregation.
func (s *RequirementService) Stats(ctx context.Context) (*ports.RequirementStats, error) {
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("stats cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to aggregate requirement stats")
		return nil, err
	}

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

// deriveClient inserts the client profile carried by a new submission.
// Failure is logged and swallowed: the requirement write already succeeded
// and stays authoritative.
func (s *RequirementService) deriveClient(ctx context.Context, doc map[string]any, now time.Time) {
	client := map[string]any{
		"name":       stringField(doc, "requestorName"),
		"email":      stringField(doc, "requestorEmail"),
		"phone":      stringField(doc, "requestorPhone"),
		"city":       stringField(doc, "city"),
		"created_at": now,
		"updated_at": now,
	}
	if _, err := s.clients.Insert(ctx, client); err != nil {
		s.logger.Warn().Err(err).Str("email", stringField(doc, "requestorEmail")).Msg("derived client insert failed")
	}
}

// syncClient propagates updated requestor contact data to every client
// profile sharing the requestor's email. The email comes from the update
// payload when present, otherwise from the stored requirement.
func (s *RequirementService) syncClient(ctx context.Context, id string, update, syncFields map[string]any) {
	email := stringField(update, "requestorEmail")
	if email == "" {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("requirement_id", id).Msg("client sync skipped: requirement lookup failed")
			return
		}
		email = stringField(current, "requestorEmail")
	}
	if email == "" {
		return
	}

	syncFields["updated_at"] = time.Now().UTC()
	if err := s.clients.UpdateByEmail(ctx, email, syncFields); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("client sync failed")
	}
}

// extractContactSync maps touched requirement contact fields onto client
// profile fields.
func extractContactSync(update map[string]any) map[string]any {
	sync := make(map[string]any)
	if v, ok := update["requestorName"]; ok {
		sync["name"] = v
	}
	if v, ok := update["requestorPhone"]; ok {
		sync["phone"] = v
	}
	if v, ok := update["city"]; ok {
		sync["city"] = v
	}
	return sync
}

func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func stringField(doc map[string]any, key string) string {
	v, _ := doc[key].(string)
	return v
}
