package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/RoGogDBD/pantry/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound возвращается, когда позиция отсутствует в коллекции.
var ErrNotFound = errors.New("item not found")

type PostgresStorage struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresStorage) CreateItem(ctx context.Context, fields models.ItemFields) (string, error) {
	id := uuid.New().String()

	cols := map[string]interface{}{"id": id}
	if fields.Name != nil {
		cols["name"] = *fields.Name
	}
	if fields.Quantity != nil {
		cols["quantity"] = *fields.Quantity
	}
	if fields.ImageURL != nil {
		cols["image_url"] = *fields.ImageURL
	}

	query, args, err := r.sb.Insert("items").SetMap(cols).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

func (r *PostgresStorage) UpdateItem(ctx context.Context, id string, fields models.ItemFields) error {
	b := r.sb.Update("items").Where(sq.Eq{"id": id})
	if fields.Name != nil {
		b = b.Set("name", *fields.Name)
	}
	if fields.Quantity != nil {
		b = b.Set("quantity", *fields.Quantity)
	}
	if fields.ImageURL != nil {
		b = b.Set("image_url", *fields.ImageURL)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStorage) DeleteItem(ctx context.Context, id string) error {
	query, args, err := r.sb.Delete("items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStorage) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	query, args, err := r.sb.
		Select("id", "name", "quantity", "image_url", "created_at").
		From("items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	item, err := scanItem(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *PostgresStorage) GetAllItems(ctx context.Context) ([]models.Item, error) {
	query, args, err := r.sb.
		Select("id", "name", "quantity", "image_url", "created_at").
		From("items").
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select all: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query all items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan items rows: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var (
		it       models.Item
		imageURL *string
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Quantity, &imageURL, &it.CreatedAt); err != nil {
		return nil, err
	}
	if imageURL != nil {
		it.ImageURL = *imageURL
	}
	return &it, nil
}
