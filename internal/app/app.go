package app

import (
	"context"
	"fmt"
	"log"

	"github.com/RoGogDBD/pantry/internal/blob"
	"github.com/RoGogDBD/pantry/internal/config"
	"github.com/RoGogDBD/pantry/internal/config/db"
	"github.com/RoGogDBD/pantry/internal/events"
	"github.com/RoGogDBD/pantry/internal/inventory"
	"github.com/RoGogDBD/pantry/internal/notifier"
	"github.com/RoGogDBD/pantry/internal/repository"
	"github.com/RoGogDBD/pantry/internal/vision"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App содержит все зависимости приложения
type App struct {
	Config     *config.Config
	DBPool     *pgxpool.Pool
	Store      repository.ItemStore
	Blobs      *blob.Store
	Hub        *notifier.Hub
	Controller *inventory.Controller
	Events     *events.Publisher
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewApp создает новое приложение.
func NewApp(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		Config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	return app, nil
}

// Init выполняет инициализацию зависимостей приложения.
func (a *App) Init() error {
	// Инициализация БД
	if err := a.initDatabase(a.ctx); err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}

	// Блоб-хранилище изображений
	blobs, err := blob.NewStore(a.Config.Storage.Dir, a.Config.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to init blob storage: %w", err)
	}
	a.Blobs = blobs

	// Событийный поток изменений (опционально)
	a.Events = events.NewPublisher(a.Config.Kafka.Brokers, a.Config.Kafka.Topic)
	if a.Events == nil {
		log.Println("No Kafka brokers configured, change events disabled")
	}

	classifier := vision.NewClient(a.Config.Vision.Endpoint, a.Config.Vision.APIKey())
	if a.Config.Vision.APIKey() == "" {
		log.Printf("Warning: %s is not set, classification will fall back to %q", a.Config.Vision.APIKeyEnv, vision.FallbackLabel)
	}

	// Живая подписка и контроллер
	a.Hub = notifier.NewHub(a.Store)
	a.Controller = inventory.NewController(a.Store, a.Hub, a.Blobs, classifier, a.Events, a.Config.Notification.TTL)

	// Первичный снимок коллекции
	if err := a.Hub.Publish(a.ctx); err != nil {
		log.Printf("Warning: failed to load initial snapshot: %v", err)
	}

	return nil
}

// initDatabase инициализирует подключение к базе данных
func (a *App) initDatabase(ctx context.Context) error {
	if a.Config.Database.DSN == "" {
		return fmt.Errorf("no DSN provided")
	}

	dbPool, err := db.NewPool(ctx, a.Config.Database.DSN)
	if err != nil {
		return err
	}

	a.DBPool = dbPool
	a.Store = repository.NewPostgresStorage(dbPool)
	log.Println("Database initialized successfully")

	return nil
}

// Close освобождает все ресурсы приложения
func (a *App) Close() {
	log.Println("Shutting down application...")

	if a.cancel != nil {
		a.cancel()
	}

	if a.Events != nil {
		a.Events.Close()
	}

	// Закрываем подключение к БД
	if a.DBPool != nil {
		a.DBPool.Close()
		log.Println("Database connection closed")
	}

	log.Println("Application shutdown complete")
}

// Context возвращает контекст приложения
func (a *App) Context() context.Context {
	return a.ctx
}
