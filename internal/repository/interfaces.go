package repository

import (
	"context"

	"github.com/RoGogDBD/pantry/internal/models"
)

// ItemStore описывает операции хранилища для позиций кладовой.
type ItemStore interface {
	CreateItem(ctx context.Context, fields models.ItemFields) (string, error)
	UpdateItem(ctx context.Context, id string, fields models.ItemFields) error
	DeleteItem(ctx context.Context, id string) error
	GetItemByID(ctx context.Context, id string) (*models.Item, error)
	GetAllItems(ctx context.Context) ([]models.Item, error)
}

// SnapshotReader описывает чтение текущего снимка коллекции.
type SnapshotReader interface {
	List() []models.Item
	GetByID(id string) (*models.Item, error)
}

// SnapshotWriter описывает замену снимка целиком.
type SnapshotWriter interface {
	Replace(items []models.Item)
}

// SnapshotMirror описывает зеркало коллекции, питаемое подпиской.
type SnapshotMirror interface {
	SnapshotReader
	SnapshotWriter
}
