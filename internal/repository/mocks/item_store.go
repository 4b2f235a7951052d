package mocks

import (
	"context"
	"errors"

	"github.com/RoGogDBD/pantry/internal/models"
)

type ItemStoreMock struct {
	CreateItemFunc  func(ctx context.Context, fields models.ItemFields) (string, error)
	UpdateItemFunc  func(ctx context.Context, id string, fields models.ItemFields) error
	DeleteItemFunc  func(ctx context.Context, id string) error
	GetItemByIDFunc func(ctx context.Context, id string) (*models.Item, error)
	GetAllItemsFunc func(ctx context.Context) ([]models.Item, error)

	CreateItemCalls  int
	UpdateItemCalls  int
	DeleteItemCalls  int
	GetItemByIDCalls int
	GetAllItemsCalls int
}

func (m *ItemStoreMock) CreateItem(ctx context.Context, fields models.ItemFields) (string, error) {
	m.CreateItemCalls++
	if m.CreateItemFunc == nil {
		return "", errors.New("CreateItemFunc not set")
	}
	return m.CreateItemFunc(ctx, fields)
}

func (m *ItemStoreMock) UpdateItem(ctx context.Context, id string, fields models.ItemFields) error {
	m.UpdateItemCalls++
	if m.UpdateItemFunc == nil {
		return errors.New("UpdateItemFunc not set")
	}
	return m.UpdateItemFunc(ctx, id, fields)
}

func (m *ItemStoreMock) DeleteItem(ctx context.Context, id string) error {
	m.DeleteItemCalls++
	if m.DeleteItemFunc == nil {
		return errors.New("DeleteItemFunc not set")
	}
	return m.DeleteItemFunc(ctx, id)
}

func (m *ItemStoreMock) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	m.GetItemByIDCalls++
	if m.GetItemByIDFunc == nil {
		return nil, errors.New("GetItemByIDFunc not set")
	}
	return m.GetItemByIDFunc(ctx, id)
}

func (m *ItemStoreMock) GetAllItems(ctx context.Context) ([]models.Item, error) {
	m.GetAllItemsCalls++
	if m.GetAllItemsFunc == nil {
		return nil, errors.New("GetAllItemsFunc not set")
	}
	return m.GetAllItemsFunc(ctx)
}
