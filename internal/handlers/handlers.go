package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/RoGogDBD/pantry/internal/inventory"
	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/notifier"
	"github.com/RoGogDBD/pantry/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	controller *inventory.Controller
	hub        *notifier.Hub
	blobDir    string
}

func NewHandler(controller *inventory.Controller, hub *notifier.Hub, blobDir string) *Handler {
	return &Handler{controller: controller, hub: hub, blobDir: blobDir}
}

// Routes регистрирует все маршруты сервиса.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.HealthHandler)
	r.Get("/ws", h.WSHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/items", h.ListItemsHandler)
		r.Post("/items", h.SubmitItemHandler)
		r.Post("/items/{id}/edit", h.BeginEditHandler)
		r.Delete("/items/{id}", h.DeleteItemHandler)
		r.Post("/upload", h.UploadHandler)
		r.Get("/notification", h.NotificationHandler)
		r.Delete("/notification", h.ClearNotificationHandler)
	})

	images := http.StripPrefix("/images/", http.FileServer(http.Dir(filepath.Join(h.blobDir, "images"))))
	r.Get("/images/*", images.ServeHTTP)
}

// HealthHandler возвращает статус 200 OK и тело "OK" для проверки состояния сервера.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ListItemsHandler возвращает снимок коллекции, отфильтрованный параметром q.
func (h *Handler) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	items := h.controller.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type itemForm struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// SubmitItemHandler обрабатывает отправку формы: создает позицию либо
// обновляет цель редактирования. Пустые поля молча игнорируются — 204.
func (h *Handler) SubmitItemHandler(w http.ResponseWriter, r *http.Request) {
	var form itemForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	submitted, err := h.controller.SubmitForm(r.Context(), form.Name, form.Quantity)
	if err != nil {
		http.Error(w, "failed to submit item", http.StatusInternalServerError)
		return
	}
	if !submitted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submitted": true})
}

// BeginEditHandler помечает позицию целью редактирования и возвращает ее
// поля для заполнения формы.
func (h *Handler) BeginEditHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.controller.BeginEdit(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItemHandler удаляет позицию по идентификатору.
func (h *Handler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.controller.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadHandler принимает изображение и запускает конвейер
// загрузка→классификация→запись. Ответ — уведомление о результате.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		// Конвейер без изображения сам зафиксирует баннер об ошибке.
		n := h.controller.UploadAndClassify(r.Context())
		writeJSON(w, http.StatusOK, n)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read image", http.StatusBadRequest)
		return
	}

	h.controller.StageImage(header.Filename, data)
	n := h.controller.UploadAndClassify(r.Context())
	writeJSON(w, http.StatusOK, n)
}

// NotificationHandler возвращает баннер последней операции, если он
// еще не истек. Без баннера — 204.
func (h *Handler) NotificationHandler(w http.ResponseWriter, r *http.Request) {
	n := h.controller.Notification()
	if n == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// ClearNotificationHandler закрывает баннер вручную.
func (h *Handler) ClearNotificationHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearNotification()
	w.WriteHeader(http.StatusNoContent)
}

// WSHandler поднимает веб-сокет живой подписки: клиент сразу получает
// текущий снимок, затем по снимку на каждое изменение.
func (h *Handler) WSHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Снимки приходят из чужих горутин, записи в сокет сериализуем каналом.
	send := make(chan []models.Item, 8)
	done := make(chan struct{})
	unsubscribe := h.hub.Subscribe(func(items []models.Item) {
		select {
		case send <- items:
		default:
			// Медленный клиент пропускает промежуточный снимок,
			// следующий все равно придет полным.
		}
	})

	go func() {
		for {
			select {
			case items := <-send:
				if err := conn.WriteJSON(map[string]any{"items": items}); err != nil {
					log.Printf("websocket write error: %v", err)
					conn.Close()
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	unsubscribe()
	close(done)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
