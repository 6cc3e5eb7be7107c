package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/middleware"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/service"
)

// fakeClientStore keeps clients and subscriptions in memory.
type fakeClientStore struct {
	clients       map[int64]*model.Client
	subscriptions []*model.Subscription
	nextID        int64
}

func newFakeClientStore() *fakeClientStore {
	return &fakeClientStore{clients: make(map[int64]*model.Client), nextID: 1}
}

func (f *fakeClientStore) recordStore() service.RecordStore[*model.Client] {
	return service.RecordStore[*model.Client]{
		Get: func(ctx context.Context, id int64) (*model.Client, error) {
			c, ok := f.clients[id]
			if !ok {
				return nil, repository.ErrNotFound
			}
			copied := *c
			return &copied, nil
		},
		Create: func(ctx context.Context, c *model.Client) error {
			c.ID = f.nextID
			f.nextID++
			copied := *c
			f.clients[c.ID] = &copied
			return nil
		},
		Update: func(ctx context.Context, c *model.Client) error {
			copied := *c
			f.clients[c.ID] = &copied
			return nil
		},
		Delete: func(ctx context.Context, id int64) error {
			if _, ok := f.clients[id]; !ok {
				return repository.ErrNotFound
			}
			delete(f.clients, id)
			return nil
		},
	}
}

func (f *fakeClientStore) ListClients(ctx context.Context) ([]*model.Client, error) {
	out := make([]*model.Client, 0, len(f.clients))
	for _, c := range f.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeClientStore) ListSubscriptions(ctx context.Context, clientID int64) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for _, s := range f.subscriptions {
		if clientID == 0 || s.ClientID == clientID {
			out = append(out, s)
		}
	}
	return out, nil
}

func newClientRouter(store *fakeClientStore) http.Handler {
	logger := discardLogger()
	svc := service.NewRecordService("clients", store.recordStore(), nil)
	h := NewRecordHandler("client", svc,
		func() *model.Client { return &model.Client{} },
		ListClients(store), logger)

	r := chi.NewRouter()
	r.Use(middleware.MaxBodySize(1024))
	r.Get("/api/clients", h.List)
	r.Post("/api/clients", h.Create)
	r.Get("/api/clients/{id}", h.Get)
	r.Put("/api/clients/{id}", h.Update)
	r.Delete("/api/clients/{id}", h.Delete)
	r.Get("/api/clients/{id}/subscriptions", ClientSubscriptions(svc, store, logger))
	r.Get("/api/subscriptions", func(w http.ResponseWriter, r *http.Request) {
		items, err := ListSubscriptions(store)(r)
		if err != nil {
			respondError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.NewList(items))
	})
	return r
}

func doRequest(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecordHandler_Lifecycle(t *testing.T) {
	store := newFakeClientStore()
	router := newClientRouter(store)

	rec := doRequest(router, http.MethodPost, "/api/clients", `{"name":"Atelier Dupont","email":"contact@dupont.fr"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created model.Client
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode client: %v", err)
	}
	if created.ID != 1 || created.Status != model.ClientStatusActive {
		t.Fatalf("unexpected client: %+v", created)
	}

	rec = doRequest(router, http.MethodPut, "/api/clients/1", `{"status":"prospect"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated model.Client
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode client: %v", err)
	}
	if updated.Name != "Atelier Dupont" || updated.Status != model.ClientStatusProspect {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	rec = doRequest(router, http.MethodGet, "/api/clients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list dto.ListResponse[model.Client]
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("expected 1 client, got %d", len(list.Data))
	}

	rec = doRequest(router, http.MethodDelete, "/api/clients/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/api/clients/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestRecordHandler_EmptyListIsArray(t *testing.T) {
	rec := doRequest(newClientRouter(newFakeClientStore()), http.MethodGet, "/api/clients", "")

	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[]}` {
		t.Fatalf("expected empty data array, got %s", got)
	}
}

func TestRecordHandler_Errors(t *testing.T) {
	router := newClientRouter(newFakeClientStore())

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
		wantErr  string
	}{
		{"invalid_json", http.MethodPost, "/api/clients", `{"name":`, http.StatusBadRequest, "INVALID_JSON"},
		{"wrong_type", http.MethodPost, "/api/clients", `{"name":42}`, http.StatusBadRequest, "INVALID_JSON"},
		{"empty_body", http.MethodPost, "/api/clients", "", http.StatusBadRequest, "INVALID_JSON"},
		{"validation", http.MethodPost, "/api/clients", `{"name":"A","status":"vip"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad_id", http.MethodGet, "/api/clients/abc", "", http.StatusBadRequest, "INVALID_ID"},
		{"unknown_id", http.MethodGet, "/api/clients/9", "", http.StatusNotFound, "NOT_FOUND"},
		{"update_unknown", http.MethodPut, "/api/clients/9", `{"name":"B"}`, http.StatusNotFound, "NOT_FOUND"},
		{"update_invalid_json", http.MethodPut, "/api/clients/9", `nope`, http.StatusBadRequest, "INVALID_JSON"},
		{"too_large", http.MethodPost, "/api/clients", `{"name":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{"bad_client_filter", http.MethodGet, "/api/subscriptions?clientId=x", "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := doRequest(router, test.method, test.target, test.body)
			if rec.Code != test.wantCode {
				t.Fatalf("expected %d, got %d: %s", test.wantCode, rec.Code, rec.Body.String())
			}
			response := decodeError(t, rec)
			if response.Code != test.wantErr {
				t.Fatalf("expected code %s, got %s", test.wantErr, response.Code)
			}
			if response.Message == "" {
				t.Fatal("expected a message")
			}
		})
	}
}

func TestClientSubscriptions(t *testing.T) {
	store := newFakeClientStore()
	store.clients[1] = &model.Client{ID: 1, Name: "A"}
	store.subscriptions = []*model.Subscription{
		{ID: 10, ClientID: 1, Name: "Hébergement"},
		{ID: 11, ClientID: 2, Name: "Maintenance"},
	}
	router := newClientRouter(store)

	rec := doRequest(router, http.MethodGet, "/api/clients/1/subscriptions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list dto.ListResponse[model.Subscription]
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].ID != 10 {
		t.Fatalf("unexpected subscriptions: %+v", list.Data)
	}

	rec = doRequest(router, http.MethodGet, "/api/clients/2/subscriptions", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown client: expected 404, got %d", rec.Code)
	}
}
