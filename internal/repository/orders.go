package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// Orders is the pgx-backed order store.
type Orders struct {
	db *pgxpool.Pool
}

func NewOrders(db *pgxpool.Pool) *Orders {
	return &Orders{db: db}
}

const orderColumns = `id, order_type, chat_id, username, marketplace, warehouse,
	warehouse_normalized, loading_address, loading_date, loading_time,
	delivery_date, arrival_date, pallet_quantity, box_quantity, sender_name,
	rate, label_size, car_brand, car_model, license_plate, pallet_capacity,
	box_capacity, hydroboard, driver_name, phone, created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Type, &o.ChatID, &o.Username, &o.Marketplace, &o.Warehouse,
		&o.WarehouseNormalized, &o.LoadingAddress, &o.LoadingDate, &o.LoadingTime,
		&o.DeliveryDate, &o.ArrivalDate, &o.PalletQuantity, &o.BoxQuantity, &o.SenderName,
		&o.Rate, &o.LabelSize, &o.CarBrand, &o.CarModel, &o.LicensePlate, &o.PalletCapacity,
		&o.BoxCapacity, &o.Hydroboard, &o.DriverName, &o.Phone, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Orders) Insert(ctx context.Context, o *domain.Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (
			order_type, chat_id, username, marketplace, warehouse,
			warehouse_normalized, loading_address, loading_date, loading_time,
			delivery_date, arrival_date, pallet_quantity, box_quantity,
			sender_name, rate, label_size, car_brand, car_model, license_plate,
			pallet_capacity, box_capacity, hydroboard, driver_name, phone
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24
		) RETURNING id`,
		o.Type, o.ChatID, o.Username, o.Marketplace, o.Warehouse,
		o.WarehouseNormalized, o.LoadingAddress, o.LoadingDate, o.LoadingTime,
		o.DeliveryDate, o.ArrivalDate, o.PalletQuantity, o.BoxQuantity,
		o.SenderName, o.Rate, o.LabelSize, o.CarBrand, o.CarModel, o.LicensePlate,
		o.PalletCapacity, o.BoxCapacity, o.Hydroboard, o.DriverName, o.Phone,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (r *Orders) Update(ctx context.Context, o *domain.Order) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET
			marketplace = $1, warehouse = $2, warehouse_normalized = $3,
			loading_address = $4, loading_date = $5, loading_time = $6,
			delivery_date = $7, arrival_date = $8, pallet_quantity = $9,
			box_quantity = $10, sender_name = $11, rate = $12, label_size = $13,
			car_brand = $14, car_model = $15, license_plate = $16,
			pallet_capacity = $17, box_capacity = $18, hydroboard = $19,
			driver_name = $20, phone = $21
		WHERE id = $22 AND chat_id = $23`,
		o.Marketplace, o.Warehouse, o.WarehouseNormalized,
		o.LoadingAddress, o.LoadingDate, o.LoadingTime,
		o.DeliveryDate, o.ArrivalDate, o.PalletQuantity,
		o.BoxQuantity, o.SenderName, o.Rate, o.LabelSize,
		o.CarBrand, o.CarModel, o.LicensePlate,
		o.PalletCapacity, o.BoxCapacity, o.Hydroboard,
		o.DriverName, o.Phone, o.ID, o.ChatID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *Orders) ByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *Orders) ListByOwner(ctx context.Context, chatID int64, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return collectOrders(rows)
}

func (r *Orders) ListAll(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return collectOrders(rows)
}

// Delete removes an order owned by chatID. Reports whether a row went away.
func (r *Orders) Delete(ctx context.Context, id, chatID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND chat_id = $2`, id, chatID)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteByID removes any order regardless of owner, for moderation.
func (r *Orders) DeleteByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FindCandidates lists orders of one type with the given loading date and
// marketplace, excluding the given owner, newest first. Warehouse matching
// stays in the service so all normalization rules live in one place.
func (r *Orders) FindCandidates(ctx context.Context, t domain.OrderType, loadingDate time.Time, marketplace string, excludeChat int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE order_type = $1 AND loading_date = $2 AND marketplace = $3 AND chat_id <> $4
		 ORDER BY created_at DESC`,
		t, loadingDate, marketplace, excludeChat)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	return collectOrders(rows)
}

func (r *Orders) CountToday(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE chat_id = $1 AND created_at >= CURRENT_DATE`,
		chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count today's orders: %w", err)
	}
	return count, nil
}

func (r *Orders) CountByType(ctx context.Context, t domain.OrderType) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE order_type = $1`, t).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (r *Orders) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent orders: %w", err)
	}
	return count, nil
}

func (r *Orders) CountDistinctUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(DISTINCT chat_id) FROM orders`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count distinct users: %w", err)
	}
	return count, nil
}

// UserActivity is one row of the admin user list: an identity and how much
// it has posted.
type UserActivity struct {
	ChatID     int64
	Username   string
	OrderCount int
	LastOrder  time.Time
}

func (r *Orders) UserActivity(ctx context.Context, limit int) ([]UserActivity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, MAX(username), COUNT(*), MAX(created_at)
		FROM orders GROUP BY chat_id ORDER BY MAX(created_at) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list user activity: %w", err)
	}
	defer rows.Close()

	var out []UserActivity
	for rows.Next() {
		var u UserActivity
		if err := rows.Scan(&u.ChatID, &u.Username, &u.OrderCount, &u.LastOrder); err != nil {
			return nil, fmt.Errorf("scan user activity: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// PurgeExpiredSenders deletes sender listings whose delivery date is more
// than retention days in the past. Carrier listings are kept.
func (r *Orders) PurgeExpiredSenders(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM orders
		WHERE order_type = 'sender'
		  AND delivery_date IS NOT NULL
		  AND delivery_date < CURRENT_DATE - $1::int`,
		retentionDays)
	if err != nil {
		return 0, fmt.Errorf("purge expired orders: %w", err)
	}
	return tag.RowsAffected(), nil
}
