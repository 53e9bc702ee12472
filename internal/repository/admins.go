package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// Admins is the pgx-backed admin roster. Roles live in bot_admins;
// capability flags live in admin_permissions keyed by the roster row. An
// admin without a permissions row gets read-only defaults.
type Admins struct {
	db *pgxpool.Pool
}

func NewAdmins(db *pgxpool.Pool) *Admins {
	return &Admins{db: db}
}

func (r *Admins) Permissions(ctx context.Context, chatID int64) (*domain.AdminPermissions, error) {
	var (
		p       domain.AdminPermissions
		hasPerm bool
	)
	err := r.db.QueryRow(ctx, `
		SELECT a.chat_id, a.role, p.admin_id IS NOT NULL,
			COALESCE(p.can_view_stats, TRUE),
			COALESCE(p.can_view_orders, TRUE),
			COALESCE(p.can_remove_orders, FALSE),
			COALESCE(p.can_manage_users, FALSE),
			COALESCE(p.can_block_users, FALSE),
			COALESCE(p.can_manage_admins, FALSE),
			COALESCE(p.can_view_security_logs, FALSE)
		FROM bot_admins a
		LEFT JOIN admin_permissions p ON p.admin_id = a.id
		WHERE a.chat_id = $1 AND a.is_active`,
		chatID,
	).Scan(
		&p.ChatID, &p.Role, &hasPerm,
		&p.CanViewStats, &p.CanViewOrders, &p.CanRemoveOrders,
		&p.CanManageUsers, &p.CanBlockUsers, &p.CanManageAdmins,
		&p.CanViewSecurityLogs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin permissions: %w", err)
	}
	if !hasPerm {
		p.Capabilities = domain.ViewerCapabilities()
	}
	return &p, nil
}

func (r *Admins) Upsert(ctx context.Context, chatID int64, role domain.AdminRole, caps domain.Capabilities) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var adminID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO bot_admins (chat_id, role, is_active) VALUES ($1, $2, TRUE)
		ON CONFLICT (chat_id) DO UPDATE SET role = EXCLUDED.role, is_active = TRUE
		RETURNING id`,
		chatID, role).Scan(&adminID)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO admin_permissions (
			admin_id, can_view_stats, can_view_orders, can_remove_orders,
			can_manage_users, can_block_users, can_manage_admins, can_view_security_logs
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (admin_id) DO UPDATE SET
			can_view_stats = EXCLUDED.can_view_stats,
			can_view_orders = EXCLUDED.can_view_orders,
			can_remove_orders = EXCLUDED.can_remove_orders,
			can_manage_users = EXCLUDED.can_manage_users,
			can_block_users = EXCLUDED.can_block_users,
			can_manage_admins = EXCLUDED.can_manage_admins,
			can_view_security_logs = EXCLUDED.can_view_security_logs`,
		adminID, caps.CanViewStats, caps.CanViewOrders, caps.CanRemoveOrders,
		caps.CanManageUsers, caps.CanBlockUsers, caps.CanManageAdmins,
		caps.CanViewSecurityLogs)
	if err != nil {
		return fmt.Errorf("upsert admin permissions: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Admins) Remove(ctx context.Context, chatID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bot_admins WHERE chat_id = $1`, chatID)
	if err != nil {
		return false, fmt.Errorf("remove admin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Admins) List(ctx context.Context) ([]domain.AdminPermissions, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.chat_id, a.role, p.admin_id IS NOT NULL,
			COALESCE(p.can_view_stats, TRUE),
			COALESCE(p.can_view_orders, TRUE),
			COALESCE(p.can_remove_orders, FALSE),
			COALESCE(p.can_manage_users, FALSE),
			COALESCE(p.can_block_users, FALSE),
			COALESCE(p.can_manage_admins, FALSE),
			COALESCE(p.can_view_security_logs, FALSE)
		FROM bot_admins a
		LEFT JOIN admin_permissions p ON p.admin_id = a.id
		WHERE a.is_active
		ORDER BY a.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var out []domain.AdminPermissions
	for rows.Next() {
		var (
			p       domain.AdminPermissions
			hasPerm bool
		)
		err := rows.Scan(
			&p.ChatID, &p.Role, &hasPerm,
			&p.CanViewStats, &p.CanViewOrders, &p.CanRemoveOrders,
			&p.CanManageUsers, &p.CanBlockUsers, &p.CanManageAdmins,
			&p.CanViewSecurityLogs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		if !hasPerm {
			p.Capabilities = domain.ViewerCapabilities()
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
