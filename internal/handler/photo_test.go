package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
	"github.com/mirotrak/mirotrak/internal/service"
)

type fakePhotoStore struct {
	nextID int64
	photos map[int64]*model.AiPhoto
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[int64]*model.AiPhoto)}
}

func (f *fakePhotoStore) GetAiPhoto(ctx context.Context, id int64) (*model.AiPhoto, error) {
	p, ok := f.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePhotoStore) CreateAiPhoto(ctx context.Context, p *model.AiPhoto) error {
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.photos[p.ID] = &cp
	return nil
}

func (f *fakePhotoStore) CreateAiPhotos(ctx context.Context, photos []*model.AiPhoto) error {
	for _, p := range photos {
		if err := f.CreateAiPhoto(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakePhotoStore) UpdateAiPhoto(ctx context.Context, p *model.AiPhoto) error {
	if _, ok := f.photos[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	f.photos[p.ID] = &cp
	return nil
}

func (f *fakePhotoStore) DeleteAiPhoto(ctx context.Context, id int64) error {
	if _, ok := f.photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.photos, id)
	return nil
}

type fakeObjectStorage struct {
	objects   map[string][]byte
	deleteErr error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (f *fakeObjectStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStorage) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	return "https://s3.test/upload/" + key + "?X-Amz-Signature=abc", nil
}

func (f *fakeObjectStorage) URL(key string) string {
	return "https://cdn.test/" + key
}

func newPhotoRouter(store *fakePhotoStore, storage service.ObjectStorage) http.Handler {
	logger := discardLogger()
	records := service.NewRecordService("ai_photos", service.RecordStore[*model.AiPhoto]{
		Get:    store.GetAiPhoto,
		Create: store.CreateAiPhoto,
		Update: store.UpdateAiPhoto,
		Delete: store.DeleteAiPhoto,
	}, nil)
	photos := service.NewPhotoService(store, storage, 2, nil)
	h := NewPhotoHandler(records, photos, 1<<20, logger)

	r := chi.NewRouter()
	r.Route("/api/ai-photos", func(r chi.Router) {
		r.Post("/bulk", h.Bulk)
		r.Post("/presign", h.Presign)
		r.Post("/{id}/image", h.UploadImage)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func multipartImage(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	return &body, mw.FormDataContentType()
}

func TestPhotoHandler_Bulk(t *testing.T) {
	store := newFakePhotoStore()
	router := newPhotoRouter(store, nil)

	rec := doRequest(router, http.MethodPost, "/api/ai-photos/bulk",
		`{"photos":[{"title":"Portrait","prompt":"a cat"},{"title":"Paysage","prompt":"a hill","tags":["nature"]}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var list struct {
		Data []model.AiPhoto `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 2 || list.Data[0].ID == 0 || list.Data[0].Tags == nil {
		t.Fatalf("unexpected photos %+v", list.Data)
	}
	if len(store.photos) != 2 {
		t.Fatalf("expected 2 stored photos, got %d", len(store.photos))
	}
}

func TestPhotoHandler_BulkLimit(t *testing.T) {
	router := newPhotoRouter(newFakePhotoStore(), nil)

	for _, body := range []string{
		`{"photos":[]}`,
		`{"photos":[{"title":"a"},{"title":"b"},{"title":"c"}]}`,
	} {
		rec := doRequest(router, http.MethodPost, "/api/ai-photos/bulk", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		response := decodeError(t, rec)
		if response.Code != "BULK_LIMIT" || !strings.Contains(response.Message, "2") {
			t.Fatalf("unexpected error %+v", response)
		}
	}
}

func TestPhotoHandler_StorageDisabled(t *testing.T) {
	store := newFakePhotoStore()
	_ = store.CreateAiPhoto(context.Background(), &model.AiPhoto{Title: "x"})
	router := newPhotoRouter(store, nil)

	rec := doRequest(router, http.MethodPost, "/api/ai-photos/presign", `{"filename":"a.png","contentType":"image/png"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("presign: expected 503, got %d", rec.Code)
	}
	if code := decodeError(t, rec).Code; code != "STORAGE_DISABLED" {
		t.Fatalf("expected STORAGE_DISABLED, got %s", code)
	}

	body, contentType := multipartImage(t, "image", "a.png", "image/png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/ai-photos/1/image", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("upload: expected 503, got %d", rec.Code)
	}
}

func TestPhotoHandler_Presign(t *testing.T) {
	router := newPhotoRouter(newFakePhotoStore(), newFakeObjectStorage())

	rec := doRequest(router, http.MethodPost, "/api/ai-photos/presign", `{"filename":"photo.webp","contentType":"image/webp"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.PresignResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(result.StorageKey, "ai-photos/") || !strings.HasSuffix(result.StorageKey, ".webp") {
		t.Fatalf("unexpected key %q", result.StorageKey)
	}
	if result.ImageURL != "https://cdn.test/"+result.StorageKey || result.ExpiresIn != 300 {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = doRequest(router, http.MethodPost, "/api/ai-photos/presign", `{"filename":"doc.pdf","contentType":"application/pdf"}`)
	if code := decodeError(t, rec).Code; rec.Code != http.StatusBadRequest || code != "INVALID_IMAGE_TYPE" {
		t.Fatalf("expected 400 INVALID_IMAGE_TYPE, got %d %s", rec.Code, code)
	}
}

func TestPhotoHandler_UploadAndDelete(t *testing.T) {
	store := newFakePhotoStore()
	_ = store.CreateAiPhoto(context.Background(), &model.AiPhoto{Title: "Portrait"})
	storage := newFakeObjectStorage()
	router := newPhotoRouter(store, storage)

	body, contentType := multipartImage(t, "image", "portrait.png", "image/png", []byte("\x89PNG"))
	req := httptest.NewRequest(http.MethodPost, "/api/ai-photos/1/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var photo model.AiPhoto
	if err := json.NewDecoder(rec.Body).Decode(&photo); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := storage.objects[photo.StorageKey]; !ok {
		t.Fatalf("object %q not stored", photo.StorageKey)
	}
	if photo.ImageURL != "https://cdn.test/"+photo.StorageKey {
		t.Fatalf("unexpected image url %q", photo.ImageURL)
	}

	storage.deleteErr = errors.New("bucket unreachable")
	rec = doRequest(router, http.MethodDelete, "/api/ai-photos/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 despite storage failure, got %d", rec.Code)
	}
	if len(store.photos) != 0 {
		t.Fatal("photo row should be deleted")
	}
}

func TestPhotoHandler_UploadErrors(t *testing.T) {
	store := newFakePhotoStore()
	_ = store.CreateAiPhoto(context.Background(), &model.AiPhoto{Title: "Portrait"})
	router := newPhotoRouter(store, newFakeObjectStorage())

	tests := []struct {
		name     string
		target   string
		field    string
		ctype    string
		wantCode int
		wantErr  string
	}{
		{"missing_image", "/api/ai-photos/1/image", "file", "image/png", http.StatusBadRequest, "IMAGE_MISSING"},
		{"bad_type", "/api/ai-photos/1/image", "image", "text/plain", http.StatusBadRequest, "INVALID_IMAGE_TYPE"},
		{"unknown_photo", "/api/ai-photos/9/image", "image", "image/png", http.StatusNotFound, "NOT_FOUND"},
		{"bad_id", "/api/ai-photos/x/image", "image", "image/png", http.StatusBadRequest, "INVALID_ID"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			body, contentType := multipartImage(t, test.field, "a.png", test.ctype, []byte("data"))
			req := httptest.NewRequest(http.MethodPost, test.target, body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != test.wantCode {
				t.Fatalf("expected %d, got %d: %s", test.wantCode, rec.Code, rec.Body.String())
			}
			if code := decodeError(t, rec).Code; code != test.wantErr {
				t.Fatalf("expected %s, got %s", test.wantErr, code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/ai-photos/1/image", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if code := decodeError(t, rec).Code; rec.Code != http.StatusBadRequest || code != "INVALID_MULTIPART" {
		t.Fatalf("expected 400 INVALID_MULTIPART, got %d %s", rec.Code, code)
	}
}
