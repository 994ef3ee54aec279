package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubRequirementRepo struct {
	docs      map[string]map[string]any
	nextID    int
	insertErr error
	statsErr  error
}

func newStubRequirementRepo() *stubRequirementRepo {
	return &stubRequirementRepo{docs: make(map[string]map[string]any)}
}

func (r *stubRequirementRepo) Insert(_ context.Context, doc map[string]any) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	r.nextID++
	id := fmt.Sprintf("%024x", r.nextID)
	clone := cloneFields(doc)
	clone["_id"] = id
	r.docs[id] = clone
	return id, nil
}

func (r *stubRequirementRepo) FindByID(_ context.Context, id string) (map[string]any, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}
	return cloneFields(doc), nil
}

func (r *stubRequirementRepo) List(_ context.Context, q ports.ListQuery) ([]map[string]any, int64, error) {
	var matched []map[string]any
	for _, doc := range r.docs {
		ok := true
		for k, v := range q.Filters {
			if s, _ := doc[k].(string); s != v {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, cloneFields(doc))
		}
	}

	// Deterministic order: sort by the requested field when it holds a
	// time, falling back to the id.
	sort.Slice(matched, func(i, j int) bool {
		ti, iok := matched[i][q.SortBy].(time.Time)
		tj, jok := matched[j][q.SortBy].(time.Time)
		var less bool
		if iok && jok && !ti.Equal(tj) {
			less = ti.Before(tj)
		} else {
			less = matched[i]["_id"].(string) < matched[j]["_id"].(string)
		}
		if q.SortDir < 0 {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	skip := (q.Page - 1) * q.PerPage
	if skip > len(matched) {
		return []map[string]any{}, total, nil
	}
	end := skip + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubRequirementRepo) Update(_ context.Context, id string, fields map[string]any) error {
	doc, ok := r.docs[id]
	if !ok {
		return domain.ErrRequirementNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (r *stubRequirementRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrRequirementNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *stubRequirementRepo) Search(_ context.Context, term string, limit int) ([]map[string]any, error) {
	needle := strings.ToLower(term)
	var matched []map[string]any
	for _, doc := range r.docs {
		for _, field := range []string{"projectTitle", "description", "requestorName", "department"} {
			if s, _ := doc[field].(string); strings.Contains(strings.ToLower(s), needle) {
				matched = append(matched, cloneFields(doc))
				break
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *stubRequirementRepo) Stats(_ context.Context) (*ports.RequirementStats, error) {
	if r.statsErr != nil {
		return nil, r.statsErr
	}
	stats := &ports.RequirementStats{
		Total:            int64(len(r.docs)),
		StatusCounts:     make(map[string]int64),
		PriorityCounts:   make(map[string]int64),
		DepartmentCounts: make(map[string]int64),
	}
	for _, doc := range r.docs {
		status, _ := doc["status"].(string)
		priority, _ := doc["priority"].(string)
		department, _ := doc["department"].(string)
		stats.StatusCounts[status]++
		stats.PriorityCounts[priority]++
		stats.DepartmentCounts[department]++
	}
	return stats, nil
}

type stubClientRepo struct {
	inserted     []map[string]any
	insertErr    error
	syncedEmail  string
	syncedFields map[string]any
	syncErr      error
}

func (r *stubClientRepo) Insert(_ context.Context, doc map[string]any) (string, error) {
	if r.insertErr != nil {
		return "", r.insertErr
	}
	r.inserted = append(r.inserted, cloneFields(doc))
	return fmt.Sprintf("%024x", len(r.inserted)), nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id string) (map[string]any, error) {
	return nil, domain.ErrClientNotFound
}

func (r *stubClientRepo) List(_ context.Context, q ports.ClientListQuery) ([]map[string]any, int64, error) {
	return nil, 0, nil
}

func (r *stubClientRepo) Delete(_ context.Context, id string) error {
	return domain.ErrClientNotFound
}

func (r *stubClientRepo) Search(_ context.Context, term string, limit int) ([]map[string]any, error) {
	return nil, nil
}

func (r *stubClientRepo) UpdateByEmail(_ context.Context, email string, fields map[string]any) error {
	if r.syncErr != nil {
		return r.syncErr
	}
	r.syncedEmail = email
	r.syncedFields = cloneFields(fields)
	return nil
}

type stubStatsCache struct {
	stored *ports.RequirementStats
	getErr error
	sets   int
}

func (c *stubStatsCache) Get(_ context.Context) (*ports.RequirementStats, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.stored, nil
}

func (c *stubStatsCache) Set(_ context.Context, stats *ports.RequirementStats) error {
	c.stored = stats
	c.sets++
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestService(repo *stubRequirementRepo, clients *stubClientRepo) *RequirementService {
	return NewRequirementService(repo, clients, nil, 0, discardLogger)
}

func fullSubmission() map[string]any {
	return map[string]any{
		"date":                  "2024-03-01",
		"projectTitle":          "Inventory revamp",
		"requestorName":         "Ana Torres",
		"requestorPhone":        "+52 55 1111 2222",
		"requestorEmail":        "ana@example.com",
		"department":            "IT",
		"sponsorName":           "Luis Vega",
		"sponsorPhone":          "+52 55 3333 4444",
		"sponsorEmail":          "luis@example.com",
		"description":           "Replace the legacy inventory tracker",
		"dependencies":          "ERP export feed",
		"requestedEndDate":      "2024-09-30",
		"estimatedBudget":       120000.0,
		"priority":              "High",
		"projectType":           "Internal",
		"technicalRequirements": "Web UI, nightly sync",
		"businessJustification": "Manual counts cost two days per month",
		"riskAssessment":        "Low",
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestRequirementService_Create_Success(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	id, err := svc.Create(context.Background(), fullSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty id")
	}

	stored, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get after create failed: %v", err)
	}
	if stored["projectTitle"] != "Inventory revamp" {
		t.Errorf("projectTitle not persisted: %v", stored["projectTitle"])
	}
	if stored["status"] != domain.StatusPending {
		t.Errorf("expected default status %q, got %v", domain.StatusPending, stored["status"])
	}
	if _, ok := stored["created_at"].(time.Time); !ok {
		t.Error("created_at not stamped")
	}
	if _, ok := stored["updated_at"].(time.Time); !ok {
		t.Error("updated_at not stamped")
	}
}

func TestRequirementService_Create_KeepsExplicitStatus(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	fields := fullSubmission()
	fields["status"] = domain.StatusApproved

	id, err := svc.Create(context.Background(), fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := svc.Get(context.Background(), id)
	if stored["status"] != domain.StatusApproved {
		t.Errorf("explicit status overwritten: %v", stored["status"])
	}
}

func TestRequirementService_Create_MissingFields(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	fields := fullSubmission()
	delete(fields, "estimatedBudget")
	delete(fields, "riskAssessment")

	_, err := svc.Create(context.Background(), fields)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"estimatedBudget", "riskAssessment"}
	got := append([]string(nil), ve.Missing...)
	sort.Strings(got)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected missing fields %v, got %v", want, got)
	}
	if len(repo.docs) != 0 {
		t.Error("rejected submission must not be persisted")
	}
}

func TestRequirementService_Create_DerivesClient(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{}
	svc := newTestService(repo, clients)

	if _, err := svc.Create(context.Background(), fullSubmission()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(clients.inserted) != 1 {
		t.Fatalf("expected 1 derived client, got %d", len(clients.inserted))
	}
	client := clients.inserted[0]
	if client["name"] != "Ana Torres" || client["email"] != "ana@example.com" || client["phone"] != "+52 55 1111 2222" {
		t.Errorf("derived client fields wrong: %+v", client)
	}
}

func TestRequirementService_Create_EverySubmissionInsertsClient(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{}
	svc := newTestService(repo, clients)

	_, _ = svc.Create(context.Background(), fullSubmission())
	_, _ = svc.Create(context.Background(), fullSubmission())

	// Duplicates are not deduplicated.
	if len(clients.inserted) != 2 {
		t.Fatalf("expected 2 derived clients, got %d", len(clients.inserted))
	}
}

func TestRequirementService_Create_ClientInsertFailureIsSwallowed(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{insertErr: errors.New("clients collection down")}
	svc := newTestService(repo, clients)

	id, err := svc.Create(context.Background(), fullSubmission())
	if err != nil {
		t.Fatalf("requirement create must survive client insert failure: %v", err)
	}
	if _, err := svc.Get(context.Background(), id); err != nil {
		t.Fatalf("requirement must be persisted: %v", err)
	}
}

func TestRequirementService_Create_RepoError(t *testing.T) {
	repo := newStubRequirementRepo()
	repo.insertErr = errors.New("db unavailable")
	svc := newTestService(repo, &stubClientRepo{})

	if _, err := svc.Create(context.Background(), fullSubmission()); err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestRequirementService_List_Pagination(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(context.Background(), fullSubmission()); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	page, err := svc.List(context.Background(), ports.ListQuery{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 10 {
		t.Errorf("expected 10 items, got %d", len(page.Items))
	}
	if page.Total != 25 {
		t.Errorf("expected total 25, got %d", page.Total)
	}
	if page.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", page.TotalPages)
	}

	last, err := svc.List(context.Background(), ports.ListQuery{Page: 3, PerPage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(last.Items) != 5 {
		t.Errorf("expected 5 items on last page, got %d", len(last.Items))
	}
}

func TestRequirementService_List_Defaults(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	page, err := svc.List(context.Background(), ports.ListQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 1 || page.PerPage != 10 {
		t.Errorf("expected defaults page=1 per_page=10, got %d/%d", page.Page, page.PerPage)
	}
	if page.TotalPages != 0 {
		t.Errorf("expected 0 pages for empty store, got %d", page.TotalPages)
	}
}

func TestRequirementService_List_FilterAllowList(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	approved := fullSubmission()
	approved["status"] = domain.StatusApproved
	_, _ = svc.Create(context.Background(), approved)
	_, _ = svc.Create(context.Background(), fullSubmission())

	page, err := svc.List(context.Background(), ports.ListQuery{
		Filters: map[string]string{
			"status":       domain.StatusApproved,
			"projectTitle": "Inventory revamp", // not filterable, must be dropped
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected 1 approved requirement, got %d", page.Total)
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestRequirementService_Update_StampsLaterUpdatedAt(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	id, _ := svc.Create(context.Background(), fullSubmission())
	before, _ := svc.Get(context.Background(), id)
	prev := before["updated_at"].(time.Time)

	time.Sleep(2 * time.Millisecond)
	if err := svc.Update(context.Background(), id, map[string]any{"priority": "Low"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, _ := svc.Get(context.Background(), id)
	next := after["updated_at"].(time.Time)
	if !next.After(prev) {
		t.Errorf("updated_at must advance: prev=%v next=%v", prev, next)
	}
	if after["priority"] != "Low" {
		t.Errorf("priority not updated: %v", after["priority"])
	}
}

func TestRequirementService_Update_RejectsUnknownFields(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	id, _ := svc.Create(context.Background(), fullSubmission())

	err := svc.Update(context.Background(), id, map[string]any{"favouriteColor": "green"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Unknown) != 1 || ve.Unknown[0] != "favouriteColor" {
		t.Errorf("expected unknown field favouriteColor, got %v", ve.Unknown)
	}
}

func TestRequirementService_Update_StripsIdentifier(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	id, _ := svc.Create(context.Background(), fullSubmission())

	if err := svc.Update(context.Background(), id, map[string]any{"_id": "ffffffffffffffffffffffff", "priority": "Low"}); err != nil {
		t.Fatalf("identifier in payload must be stripped, not rejected: %v", err)
	}

	doc, _ := svc.Get(context.Background(), id)
	if doc["_id"] != id {
		t.Errorf("identifier must be immutable, got %v", doc["_id"])
	}
}

func TestRequirementService_Update_NotFound(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	err := svc.Update(context.Background(), "000000000000000000000099", map[string]any{"priority": "Low"})
	if !errors.Is(err, domain.ErrRequirementNotFound) {
		t.Fatalf("expected ErrRequirementNotFound, got %v", err)
	}
}

func TestRequirementService_Update_SyncsClientByEmail(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{}
	svc := newTestService(repo, clients)

	fields := fullSubmission()
	fields["requestorEmail"] = "a@x.com"
	id, _ := svc.Create(context.Background(), fields)

	if err := svc.Update(context.Background(), id, map[string]any{"requestorName": "Marta Ruiz"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if clients.syncedEmail != "a@x.com" {
		t.Errorf("sync must match on the stored requestor email, got %q", clients.syncedEmail)
	}
	if clients.syncedFields["name"] != "Marta Ruiz" {
		t.Errorf("client name not propagated: %+v", clients.syncedFields)
	}
}

func TestRequirementService_Update_NoContactFields_NoSync(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{}
	svc := newTestService(repo, clients)

	id, _ := svc.Create(context.Background(), fullSubmission())

	if err := svc.Update(context.Background(), id, map[string]any{"priority": "Low"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clients.syncedEmail != "" {
		t.Error("client sync must not run when no contact field changed")
	}
}

func TestRequirementService_Update_SyncFailureIsSwallowed(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{syncErr: errors.New("clients collection down")}
	svc := newTestService(repo, clients)

	id, _ := svc.Create(context.Background(), fullSubmission())

	if err := svc.Update(context.Background(), id, map[string]any{"requestorName": "Marta Ruiz"}); err != nil {
		t.Fatalf("requirement update must survive sync failure: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestRequirementService_Delete_ThenGet_NotFound(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	id, _ := svc.Create(context.Background(), fullSubmission())

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), id); !errors.Is(err, domain.ErrRequirementNotFound) {
		t.Fatalf("expected ErrRequirementNotFound after delete, got %v", err)
	}
}

func TestRequirementService_Delete_DoesNotCascadeClients(t *testing.T) {
	repo := newStubRequirementRepo()
	clients := &stubClientRepo{}
	svc := newTestService(repo, clients)

	id, _ := svc.Create(context.Background(), fullSubmission())
	_ = svc.Delete(context.Background(), id)

	if len(clients.inserted) != 1 {
		t.Errorf("derived client must survive requirement deletion, got %d rows", len(clients.inserted))
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestRequirementService_Search_MatchesDescription(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	over := fullSubmission()
	over["description"] = "over budget"
	wantID, _ := svc.Create(context.Background(), over)

	other := fullSubmission()
	other["description"] = "routine maintenance"
	_, _ = svc.Create(context.Background(), other)

	results, err := svc.Search(context.Background(), "budget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(results))
	}
	if results[0]["_id"] != wantID {
		t.Errorf("wrong document matched: %v", results[0]["_id"])
	}
}

func TestRequirementService_Search_RespectsConfiguredLimit(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := NewRequirementService(repo, &stubClientRepo{}, nil, 2, discardLogger)

	for i := 0; i < 5; i++ {
		_, _ = svc.Create(context.Background(), fullSubmission())
	}

	results, err := svc.Search(context.Background(), "inventory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected capped result set of 2, got %d", len(results))
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestRequirementService_Stats_GroupedCounts(t *testing.T) {
	repo := newStubRequirementRepo()
	svc := newTestService(repo, &stubClientRepo{})

	_, _ = svc.Create(context.Background(), fullSubmission())
	_, _ = svc.Create(context.Background(), fullSubmission())
	approved := fullSubmission()
	approved["status"] = domain.StatusApproved
	_, _ = svc.Create(context.Background(), approved)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.StatusCounts[domain.StatusPending] != 2 || stats.StatusCounts[domain.StatusApproved] != 1 {
		t.Errorf("unexpected status counts: %+v", stats.StatusCounts)
	}
}

func TestRequirementService_Stats_ServedFromCache(t *testing.T) {
	repo := newStubRequirementRepo()
	repo.statsErr = errors.New("aggregation must not run")
	cache := &stubStatsCache{stored: &ports.RequirementStats{Total: 42}}
	svc := NewRequirementService(repo, &stubClientRepo{}, cache, 0, discardLogger)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 42 {
		t.Errorf("expected cached snapshot, got %+v", stats)
	}
}

func TestRequirementService_Stats_CacheMissFillsCache(t *testing.T) {
	repo := newStubRequirementRepo()
	cache := &stubStatsCache{}
	svc := NewRequirementService(repo, &stubClientRepo{}, cache, 0, discardLogger)

	_, _ = svc.Create(context.Background(), fullSubmission())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("expected live aggregation, got %+v", stats)
	}
	if cache.sets != 1 {
		t.Errorf("expected cache fill after miss, got %d sets", cache.sets)
	}
}

func TestRequirementService_Stats_CacheErrorFallsThrough(t *testing.T) {
	repo := newStubRequirementRepo()
	cache := &stubStatsCache{getErr: errors.New("redis down")}
	svc := NewRequirementService(repo, &stubClientRepo{}, cache, 0, discardLogger)

	_, _ = svc.Create(context.Background(), fullSubmission())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not fail stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("expected live aggregation, got %+v", stats)
	}
}
