package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/service"
)

type fakeSettingStore struct {
	nextID   int64
	settings map[string]*model.Setting
}

func newFakeSettingStore() *fakeSettingStore {
	return &fakeSettingStore{settings: make(map[string]*model.Setting)}
}

func (f *fakeSettingStore) ListSettings(ctx context.Context) ([]*model.Setting, error) {
	out := make([]*model.Setting, 0, len(f.settings))
	for _, s := range f.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeSettingStore) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	s, ok := f.settings[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSettingStore) CreateSetting(ctx context.Context, s *model.Setting) error {
	if _, ok := f.settings[s.Key]; ok {
		return repository.ErrDuplicateKey
	}
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.settings[s.Key] = s
	return nil
}

func (f *fakeSettingStore) UpsertSetting(ctx context.Context, s *model.Setting) (bool, error) {
	if existing, ok := f.settings[s.Key]; ok {
		existing.Value = s.Value
		*s = *existing
		return false, nil
	}
	return true, f.CreateSetting(ctx, s)
}

func (f *fakeSettingStore) DeleteSetting(ctx context.Context, key string) error {
	if _, ok := f.settings[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.settings, key)
	return nil
}

func newSettingRouter(store *fakeSettingStore) http.Handler {
	h := NewSettingHandler(service.NewSettingService(store, nil), discardLogger())

	r := chi.NewRouter()
	r.Route("/api/settings", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{key}", h.Get)
		r.Put("/{key}", h.Put)
		r.Delete("/{key}", h.Delete)
	})
	return r
}

func TestSettingHandler_Lifecycle(t *testing.T) {
	router := newSettingRouter(newFakeSettingStore())

	rec := doRequest(router, http.MethodPost, "/api/settings", `{"key":"company_name","value":"Miro Studio"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodPost, "/api/settings", `{"key":"company_name","value":"Autre"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", code)
	}

	rec = doRequest(router, http.MethodPut, "/api/settings/company_name", `{"value":"Miro & Co"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodPut, "/api/settings/vat_rate", `{"value":20}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upsert new key: expected 201, got %d", rec.Code)
	}
	var created model.Setting
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Value != "20" {
		t.Fatalf("expected raw JSON value 20, got %q", created.Value)
	}

	rec = doRequest(router, http.MethodGet, "/api/settings/company_name", "")
	var got model.Setting
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Value != "Miro & Co" {
		t.Fatalf("unexpected value %q", got.Value)
	}

	rec = doRequest(router, http.MethodGet, "/api/settings", "")
	var list struct {
		Data []model.Setting `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 2 || list.Data[0].Key != "company_name" {
		t.Fatalf("unexpected list %+v", list.Data)
	}

	rec = doRequest(router, http.MethodDelete, "/api/settings/company_name", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = doRequest(router, http.MethodDelete, "/api/settings/company_name", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestSettingHandler_Errors(t *testing.T) {
	router := newSettingRouter(newFakeSettingStore())

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown_key", http.MethodGet, "/api/settings/missing", "", http.StatusNotFound, "NOT_FOUND"},
		{"missing_key", http.MethodPost, "/api/settings", `{"value":"x"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid_json", http.MethodPut, "/api/settings/k", `{"value":`, http.StatusBadRequest, "INVALID_JSON"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(router, test.method, test.target, test.body)
			if rec.Code != test.wantCode {
				t.Fatalf("expected %d, got %d: %s", test.wantCode, rec.Code, rec.Body.String())
			}
			if code := decodeError(t, rec).Code; code != test.wantErr {
				t.Fatalf("expected %s, got %s", test.wantErr, code)
			}
		})
	}
}
