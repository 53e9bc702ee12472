package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// Templates stores named order snapshots as JSONB.
type Templates struct {
	db *pgxpool.Pool
}

func NewTemplates(db *pgxpool.Pool) *Templates {
	return &Templates{db: db}
}

func (r *Templates) Save(ctx context.Context, t *domain.Template) (int64, error) {
	data, err := json.Marshal(t.Data)
	if err != nil {
		return 0, fmt.Errorf("marshal template data: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO order_templates (chat_id, template_name, order_type, template_data)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		t.ChatID, t.Name, t.OrderType, data).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save template: %w", err)
	}
	return id, nil
}

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var (
		t    domain.Template
		data []byte
	)
	if err := row.Scan(&t.ID, &t.ChatID, &t.Name, &t.OrderType, &data, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Data = &domain.Order{}
	if err := json.Unmarshal(data, t.Data); err != nil {
		return nil, fmt.Errorf("unmarshal template data: %w", err)
	}
	return &t, nil
}

func (r *Templates) ByID(ctx context.Context, id, chatID int64) (*domain.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx, `
		SELECT id, chat_id, template_name, order_type, template_data, created_at
		FROM order_templates WHERE id = $1 AND chat_id = $2`, id, chatID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ByName resolves a template by its menu label, for the main-menu shortcut
// buttons.
func (r *Templates) ByName(ctx context.Context, chatID int64, name string) (*domain.Template, error) {
	t, err := scanTemplate(r.db.QueryRow(ctx, `
		SELECT id, chat_id, template_name, order_type, template_data, created_at
		FROM order_templates WHERE chat_id = $1 AND template_name = $2
		ORDER BY created_at DESC LIMIT 1`, chatID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template by name: %w", err)
	}
	return t, nil
}

func (r *Templates) ListByOwner(ctx context.Context, chatID int64) ([]domain.Template, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, template_name, order_type, template_data, created_at
		FROM order_templates WHERE chat_id = $1 ORDER BY created_at DESC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Templates) Delete(ctx context.Context, id, chatID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM order_templates WHERE id = $1 AND chat_id = $2`, id, chatID)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
