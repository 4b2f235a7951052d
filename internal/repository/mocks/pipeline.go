package mocks

import (
	"context"
	"errors"

	"github.com/RoGogDBD/pantry/internal/models"
)

type BlobStoreMock struct {
	UploadFunc    func(name string, data []byte) (string, error)
	PublicURLFunc func(key string) string

	UploadCalls    int
	PublicURLCalls int
}

func (m *BlobStoreMock) Upload(name string, data []byte) (string, error) {
	m.UploadCalls++
	if m.UploadFunc == nil {
		return "", errors.New("UploadFunc not set")
	}
	return m.UploadFunc(name, data)
}

func (m *BlobStoreMock) PublicURL(key string) string {
	m.PublicURLCalls++
	if m.PublicURLFunc == nil {
		return ""
	}
	return m.PublicURLFunc(key)
}

type ClassifierMock struct {
	ClassifyFunc  func(ctx context.Context, imageURL string) string
	ClassifyCalls int
}

func (m *ClassifierMock) Classify(ctx context.Context, imageURL string) string {
	m.ClassifyCalls++
	if m.ClassifyFunc == nil {
		return "Item"
	}
	return m.ClassifyFunc(ctx, imageURL)
}

type PublisherMock struct {
	PublishFunc   func(ctx context.Context, event models.ChangeEvent)
	PublishCalls  int
	PublishEvents []models.ChangeEvent
}

func (m *PublisherMock) Publish(ctx context.Context, event models.ChangeEvent) {
	m.PublishCalls++
	m.PublishEvents = append(m.PublishEvents, event)
	if m.PublishFunc != nil {
		m.PublishFunc(ctx, event)
	}
}
