package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RoGogDBD/pantry/internal/inventory"
	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/notifier"
	"github.com/RoGogDBD/pantry/internal/repository"
	"github.com/RoGogDBD/pantry/internal/repository/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type env struct {
	router     *chi.Mux
	controller *inventory.Controller
	hub        *notifier.Hub
	store      *mocks.ItemStoreMock
	classifier *mocks.ClassifierMock
}

func newEnv(t *testing.T) *env {
	t.Helper()

	var (
		mu    sync.Mutex
		items []models.Item
	)
	store := &mocks.ItemStoreMock{
		CreateItemFunc: func(ctx context.Context, fields models.ItemFields) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			it := models.Item{ID: uuid.New().String(), CreatedAt: time.Now()}
			applyFields(&it, fields)
			items = append(items, it)
			return it.ID, nil
		},
		UpdateItemFunc: func(ctx context.Context, id string, fields models.ItemFields) error {
			mu.Lock()
			defer mu.Unlock()
			for i := range items {
				if items[i].ID == id {
					applyFields(&items[i], fields)
					return nil
				}
			}
			return repository.ErrNotFound
		},
		DeleteItemFunc: func(ctx context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			for i := range items {
				if items[i].ID == id {
					items = append(items[:i], items[i+1:]...)
					return nil
				}
			}
			return repository.ErrNotFound
		},
		GetAllItemsFunc: func(ctx context.Context) ([]models.Item, error) {
			mu.Lock()
			defer mu.Unlock()
			out := make([]models.Item, len(items))
			copy(out, items)
			return out, nil
		},
	}

	hub := notifier.NewHub(store)
	blobs := &mocks.BlobStoreMock{
		UploadFunc:    func(name string, data []byte) (string, error) { return "images/" + name, nil },
		PublicURLFunc: func(key string) string { return "http://localhost:8080/" + key },
	}
	classifier := &mocks.ClassifierMock{
		ClassifyFunc: func(ctx context.Context, imageURL string) string { return "Banana" },
	}
	controller := inventory.NewController(store, hub, blobs, classifier, nil, time.Minute)

	h := NewHandler(controller, hub, t.TempDir())
	r := chi.NewRouter()
	h.Routes(r)

	return &env{router: r, controller: controller, hub: hub, store: store, classifier: classifier}
}

func applyFields(it *models.Item, fields models.ItemFields) {
	if fields.Name != nil {
		it.Name = *fields.Name
	}
	if fields.Quantity != nil {
		it.Quantity = *fields.Quantity
	}
	if fields.ImageURL != nil {
		it.ImageURL = *fields.ImageURL
	}
}

func TestSubmitItemHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantItems  int
	}{
		{
			name:       "valid form creates item",
			body:       `{"name":" Flour ","quantity":"2"}`,
			wantStatus: http.StatusOK,
			wantItems:  1,
		},
		{
			name:       "empty name is silently ignored",
			body:       `{"name":"","quantity":"2"}`,
			wantStatus: http.StatusNoContent,
			wantItems:  0,
		},
		{
			name:       "empty quantity is silently ignored",
			body:       `{"name":"Flour","quantity":""}`,
			wantStatus: http.StatusNoContent,
			wantItems:  0,
		},
		{
			name:       "malformed body",
			body:       `{not-json`,
			wantStatus: http.StatusBadRequest,
			wantItems:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)

			req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			e.router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			if got := len(e.controller.Items()); got != tt.wantItems {
				t.Fatalf("expected %d items, got %d", tt.wantItems, got)
			}
		})
	}
}

func TestSubmitItemHandlerStoreFailure(t *testing.T) {
	e := newEnv(t)
	e.store.CreateItemFunc = func(ctx context.Context, fields models.ItemFields) (string, error) {
		return "", errors.New("db down")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/items", strings.NewReader(`{"name":"Flour","quantity":"2"}`))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestListItemsHandler(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "Flour", "2")
	seedItem(t, e, "Sugar", "3")

	req := httptest.NewRequest(http.MethodGet, "/api/items?q=sug", nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var resp struct {
		Items []models.Item `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "Sugar" {
		t.Fatalf("unexpected filtered items: %+v", resp.Items)
	}
}

func TestDeleteItemHandler(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "Flour", "2")
	id := e.controller.Items()[0].ID

	req := httptest.NewRequest(http.MethodDelete, "/api/items/"+id, nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if len(e.controller.Items()) != 0 {
		t.Fatalf("expected empty snapshot after delete")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/items/"+uuid.New().String(), nil)
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown id: %d", rr.Code)
	}
}

func TestBeginEditHandler(t *testing.T) {
	e := newEnv(t)
	seedItem(t, e, "Flour", "2")
	id := e.controller.Items()[0].ID

	req := httptest.NewRequest(http.MethodPost, "/api/items/"+id+"/edit", nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var item models.Item
	if err := json.NewDecoder(rr.Body).Decode(&item); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if item.ID != id || item.Name != "Flour" {
		t.Fatalf("unexpected edit target: %+v", item)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/items/"+uuid.New().String()+"/edit", nil)
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown id: %d", rr.Code)
	}
}

func TestUploadHandler(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "banana.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("jpeg-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var n inventory.Notification
	if err := json.NewDecoder(rr.Body).Decode(&n); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !n.Success {
		t.Fatalf("expected success notification, got %+v", n)
	}

	items := e.controller.Items()
	if len(items) != 1 || items[0].Name != "Banana" || items[0].Quantity != "1" {
		t.Fatalf("unexpected item after upload: %+v", items)
	}
}

func TestUploadHandlerNoFile(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	var n inventory.Notification
	if err := json.NewDecoder(rr.Body).Decode(&n); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if n.Success {
		t.Fatalf("expected failure notification without a file")
	}
	if len(e.controller.Items()) != 0 {
		t.Fatalf("expected no items")
	}
}

func TestNotificationHandler(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notification", nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 without notification, got %d", rr.Code)
	}

	// Конвейер без изображения оставляет баннер об ошибке.
	req = httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	e.router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/notification", nil)
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected notification, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/notification", nil)
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notification", nil)
	rr = httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 after manual close, got %d", rr.Code)
	}
}

func TestWSHandlerSnapshots(t *testing.T) {
	e := newEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	if err := e.hub.Publish(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Items []models.Item `json:"items"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if len(msg.Items) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", msg.Items)
	}

	seedItem(t, e, "Flour", "2")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read change snapshot: %v", err)
	}
	if len(msg.Items) != 1 || msg.Items[0].Name != "Flour" {
		t.Fatalf("expected full snapshot with Flour, got %+v", msg.Items)
	}
}

func seedItem(t *testing.T, e *env, name, quantity string) {
	t.Helper()
	if _, err := e.controller.SubmitForm(context.Background(), name, quantity); err != nil {
		t.Fatalf("seed item %s: %v", name, err)
	}
}
