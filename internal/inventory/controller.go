// Package inventory содержит контроллер кладовой: состояние формы,
// снимок коллекции и конвейер загрузки изображений.
package inventory

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/RoGogDBD/pantry/internal/repository"
)

// Uploader описывает хранилище бинарных объектов.
type Uploader interface {
	Upload(name string, data []byte) (string, error)
	PublicURL(key string) string
}

// Classifier описывает определение метки изображения. Сбой классификации
// никогда не возвращается как ошибка, только как запасная метка.
type Classifier interface {
	Classify(ctx context.Context, imageURL string) string
}

// Broadcaster описывает живую подписку на коллекцию.
type Broadcaster interface {
	Subscribe(fn func([]models.Item)) func()
	Publish(ctx context.Context) error
}

// EventSink описывает приемник событий изменения коллекции.
type EventSink interface {
	Publish(ctx context.Context, event models.ChangeEvent)
}

// Notification — баннер о результате последней завершенной операции.
type Notification struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	At      time.Time `json:"-"`
}

type stagedImage struct {
	name string
	data []byte
}

// Controller оркестрирует адаптеры хранилищ и держит состояние формы.
// Авторитетная копия списка — последний снимок подписки, контроллер
// никогда не вычисляет его сам.
type Controller struct {
	store      repository.ItemStore
	snapshot   *repository.Snapshot
	hub        Broadcaster
	blobs      Uploader
	classifier Classifier
	events     EventSink
	notifTTL   time.Duration

	mu         sync.Mutex
	editTarget *models.Item
	staged     *stagedImage
	busy       bool
	notif      *Notification
}

func NewController(store repository.ItemStore, hub Broadcaster, blobs Uploader, classifier Classifier, events EventSink, notifTTL time.Duration) *Controller {
	c := &Controller{
		store:      store,
		snapshot:   repository.NewSnapshot(),
		hub:        hub,
		blobs:      blobs,
		classifier: classifier,
		events:     events,
		notifTTL:   notifTTL,
	}
	hub.Subscribe(c.snapshot.Replace)
	return c
}

// Items возвращает текущий снимок коллекции.
func (c *Controller) Items() []models.Item {
	return c.snapshot.List()
}

// Search возвращает позиции, имя которых содержит term без учета регистра.
// Фильтр работает по снимку в памяти, хранилище не трогается.
func (c *Controller) Search(term string) []models.Item {
	items := c.snapshot.List()
	if term == "" {
		return items
	}

	term = strings.ToLower(term)
	filtered := make([]models.Item, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), term) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// SubmitForm создает позицию либо обновляет цель редактирования.
// Пустое (после трима) имя или пустое количество молча игнорируются:
// возвращается false без обращения к хранилищу и без уведомления.
func (c *Controller) SubmitForm(ctx context.Context, name, quantity string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" || quantity == "" {
		return false, nil
	}

	c.mu.Lock()
	target := c.editTarget
	c.mu.Unlock()

	fields := models.ItemFields{Name: &name, Quantity: &quantity}

	if target != nil {
		if err := c.store.UpdateItem(ctx, target.ID, fields); err != nil {
			log.Printf("failed to update item %s: %v", target.ID, err)
			c.record(false, "An error occurred. Please try again.")
			return false, fmt.Errorf("update item: %w", err)
		}
		c.clearEditTarget()
		c.afterWrite(ctx, models.ChangeEvent{Op: "update", ID: target.ID, Name: name, Quantity: quantity})
		return true, nil
	}

	id, err := c.store.CreateItem(ctx, fields)
	if err != nil {
		log.Printf("failed to create item: %v", err)
		c.record(false, "An error occurred. Please try again.")
		return false, fmt.Errorf("create item: %w", err)
	}
	c.afterWrite(ctx, models.ChangeEvent{Op: "create", ID: id, Name: name, Quantity: quantity})
	return true, nil
}

// Delete удаляет позицию по идентификатору. Без подтверждения и без отмены.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteItem(ctx, id); err != nil {
		log.Printf("failed to delete item %s: %v", id, err)
		c.record(false, "An error occurred. Please try again.")
		return fmt.Errorf("delete item: %w", err)
	}

	c.mu.Lock()
	if c.editTarget != nil && c.editTarget.ID == id {
		c.editTarget = nil
	}
	c.mu.Unlock()

	c.afterWrite(ctx, models.ChangeEvent{Op: "delete", ID: id})
	return nil
}

// BeginEdit помечает позицию целью редактирования и возвращает ее поля
// для формы. Запись не блокируется от чужих правок.
func (c *Controller) BeginEdit(id string) (*models.Item, error) {
	item, err := c.snapshot.GetByID(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.editTarget = item
	c.mu.Unlock()
	return item, nil
}

// EditTarget возвращает текущую цель редактирования, если она есть.
func (c *Controller) EditTarget() *models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editTarget
}

// StageImage откладывает изображение для конвейера загрузки.
// Одновременно может быть отложено не больше одного.
func (c *Controller) StageImage(filename string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = &stagedImage{name: filename, data: data}
}

// Busy сообщает, выполняется ли конвейер загрузки. Флаг информационный,
// повторный запуск конвейера он не запрещает.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// UploadAndClassify выполняет конвейер: загрузка в блоб-хранилище,
// публичный URL, классификация, запись в коллекцию. Уведомление об успехе
// или сбое записывается всегда; откатов нет, удачная загрузка с неудачной
// записью оставляет осиротевший объект.
func (c *Controller) UploadAndClassify(ctx context.Context) Notification {
	c.mu.Lock()
	staged := c.staged
	c.staged = nil
	if staged == nil {
		c.mu.Unlock()
		log.Printf("no image selected for upload")
		return c.record(false, "No image selected. Choose a file first.")
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	key, err := c.blobs.Upload(staged.name, staged.data)
	if err != nil {
		log.Printf("failed to upload image %s: %v", staged.name, err)
		return c.record(false, "An error occurred. Please try again.")
	}
	url := c.blobs.PublicURL(key)

	label := c.classifier.Classify(ctx, url)

	c.mu.Lock()
	target := c.editTarget
	c.mu.Unlock()

	if target != nil {
		// Количество не трогаем, меняются только имя и изображение.
		fields := models.ItemFields{Name: &label, ImageURL: &url}
		if err := c.store.UpdateItem(ctx, target.ID, fields); err != nil {
			log.Printf("failed to update classified item %s: %v", target.ID, err)
			return c.record(false, "An error occurred. Please try again.")
		}
		c.clearEditTarget()
		c.afterWrite(ctx, models.ChangeEvent{Op: "update", ID: target.ID, Name: label, ImageURL: url})
		return c.record(true, "Image uploaded and classified successfully!")
	}

	quantity := "1"
	fields := models.ItemFields{Name: &label, Quantity: &quantity, ImageURL: &url}
	id, err := c.store.CreateItem(ctx, fields)
	if err != nil {
		log.Printf("failed to create classified item: %v", err)
		return c.record(false, "An error occurred. Please try again.")
	}
	c.afterWrite(ctx, models.ChangeEvent{Op: "create", ID: id, Name: label, Quantity: quantity, ImageURL: url})
	return c.record(true, "Image uploaded and classified successfully!")
}

// Notification возвращает уведомление о последней операции, пока оно
// не истекло и не закрыто вручную.
func (c *Controller) Notification() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notif == nil {
		return nil
	}
	if c.notifTTL > 0 && time.Since(c.notif.At) > c.notifTTL {
		c.notif = nil
		return nil
	}
	n := *c.notif
	return &n
}

// ClearNotification закрывает баннер вручную.
func (c *Controller) ClearNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notif = nil
}

func (c *Controller) record(success bool, message string) Notification {
	n := Notification{Success: success, Message: message, At: time.Now()}
	c.mu.Lock()
	c.notif = &n
	c.mu.Unlock()
	return n
}

func (c *Controller) clearEditTarget() {
	c.mu.Lock()
	c.editTarget = nil
	c.mu.Unlock()
}

// afterWrite оповещает подписку и событийный поток после удачной записи.
// Эффект записи становится виден списку только когда подписка сработает.
func (c *Controller) afterWrite(ctx context.Context, event models.ChangeEvent) {
	if err := c.hub.Publish(ctx); err != nil {
		log.Printf("Warning: failed to refresh snapshot: %v", err)
	}
	if c.events != nil {
		c.events.Publish(ctx, event)
	}
}
