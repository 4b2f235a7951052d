// Package models содержит доменные модели приложения.
package models

import "time"

// Item описывает позицию в кладовой.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Quantity  string    `json:"quantity" validate:"required,quantity"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"-"`
}

// ItemFields содержит изменяемые поля позиции. Nil-указатель означает
// "поле не трогаем".
type ItemFields struct {
	Name     *string
	Quantity *string
	ImageURL *string
}

// ChangeEvent описывает событие изменения коллекции для внешних потребителей.
type ChangeEvent struct {
	Op       string `json:"op" validate:"required,oneof=create update delete"`
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name,omitempty"`
	Quantity string `json:"quantity,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// String возвращает указатель на строку, удобно для ItemFields.
func String(s string) *string {
	return &s
}
