package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proflow/proflow-back/internal/domain"
)

type PostgresItemsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresItemsRepository(ctx context.Context, databaseURL string) (*PostgresItemsRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	return &PostgresItemsRepository{pool: pool}, nil
}

func (r *PostgresItemsRepository) Close() {
	r.pool.Close()
}

func (r *PostgresItemsRepository) CreateItem(ctx context.Context, item *domain.WorkItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO production_items (
			id,
			title,
			client,
			task_name,
			stage,
			tags,
			start_date,
			duration,
			priority,
			progress,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		item.ID,
		item.Title,
		item.Client,
		item.TaskName,
		string(item.Stage),
		tagsJSON,
		item.StartDate,
		item.Duration,
		item.Priority,
		item.Progress,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *PostgresItemsRepository) UpdateItem(
	ctx context.Context,
	id string,
	update ItemUpdate,
) (*domain.WorkItem, error) {
	assignments, args := buildItemUpdate(update)
	if len(assignments) == 0 {
		return r.GetItem(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE production_items SET %s WHERE id = $%d",
		strings.Join(assignments, ", "),
		len(args),
	)

	command, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if command.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetItem(ctx, id)
}

func (r *PostgresItemsRepository) DeleteItem(ctx context.Context, id string) error {
	command, err := r.pool.Exec(ctx, `DELETE FROM production_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresItemsRepository) GetItem(ctx context.Context, id string) (*domain.WorkItem, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, client, task_name, stage, tags, start_date, duration, priority, progress, created_at
		FROM production_items
		WHERE id = $1
	`, id)

	item, err := scanItem(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (r *PostgresItemsRepository) ListItems(ctx context.Context) ([]domain.WorkItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, client, task_name, stage, tags, start_date, duration, priority, progress, created_at
		FROM production_items
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WorkItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate items: %w", rows.Err())
	}
	return items, nil
}

func scanItem(row pgx.Row) (*domain.WorkItem, error) {
	var (
		item     domain.WorkItem
		stage    string
		tagsJSON []byte
	)
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Client,
		&item.TaskName,
		&stage,
		&tagsJSON,
		&item.StartDate,
		&item.Duration,
		&item.Priority,
		&item.Progress,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Stage = domain.Stage(stage)
	item.Tags = make([]domain.Tag, 0)
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &item.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &item, nil
}

func buildItemUpdate(update ItemUpdate) ([]string, []any) {
	assignments := make([]string, 0, 9)
	args := make([]any, 0, 9)

	add := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Client != nil {
		add("client", *update.Client)
	}
	if update.TaskName != nil {
		add("task_name", *update.TaskName)
	}
	if update.Stage != nil {
		add("stage", string(*update.Stage))
	}
	if update.Tags != nil {
		encoded, err := json.Marshal(*update.Tags)
		if err == nil {
			add("tags", encoded)
		}
	}
	if update.StartDate != nil {
		add("start_date", *update.StartDate)
	}
	if update.Duration != nil {
		add("duration", *update.Duration)
	}
	if update.Priority != nil {
		add("priority", *update.Priority)
	}
	if update.Progress != nil {
		add("progress", *update.Progress)
	}

	return assignments, args
}
