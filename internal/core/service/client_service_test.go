package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kodestudio/requirements-api/internal/core/domain"
	"github.com/kodestudio/requirements-api/internal/core/ports"
)

// stubClientStore is a fuller client repository stub than the one used by
// the requirement service tests: it supports listing and searching.
type stubClientStore struct {
	docs   map[string]map[string]any
	nextID int
}

func newStubClientStore() *stubClientStore {
	return &stubClientStore{docs: make(map[string]map[string]any)}
}

func (r *stubClientStore) Insert(_ context.Context, doc map[string]any) (string, error) {
	r.nextID++
	id := fmt.Sprintf("%024x", r.nextID)
	clone := cloneFields(doc)
	clone["_id"] = id
	r.docs[id] = clone
	return id, nil
}

func (r *stubClientStore) FindByID(_ context.Context, id string) (map[string]any, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return cloneFields(doc), nil
}

func (r *stubClientStore) List(_ context.Context, q ports.ClientListQuery) ([]map[string]any, int64, error) {
	var matched []map[string]any
	for _, doc := range r.docs {
		name, _ := doc["name"].(string)
		city, _ := doc["city"].(string)
		if q.Name != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(q.Name)) {
			continue
		}
		if q.City != "" && !strings.Contains(strings.ToLower(city), strings.ToLower(q.City)) {
			continue
		}
		matched = append(matched, cloneFields(doc))
	}

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

func (r *stubClientStore) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *stubClientStore) Search(_ context.Context, term string, limit int) ([]map[string]any, error) {
	needle := strings.ToLower(term)
	var matched []map[string]any
	for _, doc := range r.docs {
		for _, field := range []string{"name", "email", "city"} {
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

func (r *stubClientStore) UpdateByEmail(_ context.Context, email string, fields map[string]any) error {
	return nil
}

func clientFields(name, email, city string) map[string]any {
	return map[string]any{
		"name":  name,
		"email": email,
		"phone": "+52 55 0000 0000",
		"city":  city,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestClientService_Create_Success(t *testing.T) {
	repo := newStubClientStore()
	svc := NewClientService(repo, 0, discardLogger)

	id, err := svc.Create(context.Background(), clientFields("Ana", "ana@example.com", "CDMX"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get after create failed: %v", err)
	}
	if doc["name"] != "Ana" {
		t.Errorf("name not persisted: %v", doc["name"])
	}
	if _, ok := doc["created_at"].(time.Time); !ok {
		t.Error("created_at not stamped")
	}
}

func TestClientService_Create_MissingFields(t *testing.T) {
	svc := NewClientService(newStubClientStore(), 0, discardLogger)

	_, err := svc.Create(context.Background(), map[string]any{"name": "Ana"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Missing) != 1 || ve.Missing[0] != "email" {
		t.Errorf("expected missing email, got %v", ve.Missing)
	}
}

func TestClientService_List_SubstringFilter(t *testing.T) {
	repo := newStubClientStore()
	svc := NewClientService(repo, 0, discardLogger)

	_, _ = svc.Create(context.Background(), clientFields("Ana Torres", "ana@example.com", "CDMX"))
	_, _ = svc.Create(context.Background(), clientFields("Luis Vega", "luis@example.com", "Puebla"))

	page, err := svc.List(context.Background(), ports.ClientListQuery{Name: "torres"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected 1 match on name substring, got %d", page.Total)
	}

	page, err = svc.List(context.Background(), ports.ClientListQuery{City: "pue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected 1 match on city substring, got %d", page.Total)
	}
}

func TestClientService_List_PaginationMath(t *testing.T) {
	repo := newStubClientStore()
	svc := NewClientService(repo, 0, discardLogger)

	for i := 0; i < 7; i++ {
		_, _ = svc.Create(context.Background(), clientFields(fmt.Sprintf("Client %d", i), fmt.Sprintf("c%d@example.com", i), "CDMX"))
	}

	page, err := svc.List(context.Background(), ports.ClientListQuery{Page: 1, PerPage: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 3 || page.Total != 7 || page.TotalPages != 3 {
		t.Errorf("unexpected page shape: items=%d total=%d pages=%d", len(page.Items), page.Total, page.TotalPages)
	}
}

func TestClientService_Delete_ThenGet_NotFound(t *testing.T) {
	repo := newStubClientStore()
	svc := NewClientService(repo, 0, discardLogger)

	id, _ := svc.Create(context.Background(), clientFields("Ana", "ana@example.com", "CDMX"))

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), id); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientService_Search_AcrossFields(t *testing.T) {
	repo := newStubClientStore()
	svc := NewClientService(repo, 0, discardLogger)

	_, _ = svc.Create(context.Background(), clientFields("Ana Torres", "ana@example.com", "CDMX"))
	_, _ = svc.Create(context.Background(), clientFields("Luis Vega", "luis@torres.mx", "Puebla"))
	_, _ = svc.Create(context.Background(), clientFields("Marta Ruiz", "marta@example.com", "Monterrey"))

	results, err := svc.Search(context.Background(), "torres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Matches the name of one client and the email domain of another.
	if len(results) != 2 {
		t.Errorf("expected 2 matches, got %d", len(results))
	}
}
