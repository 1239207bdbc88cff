package repository

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/soktep/khqrpay/internal/adapter/storage"
	"github.com/soktep/khqrpay/internal/core/domain"
)

const ordersTable = "orders"

var orderColumns = []string{
	"id", "lines", "amount", "currency", "merchant_account",
	"bill_reference", "payload", "verification_key", "status",
	"created_at", "expires_at",
}

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, err
	}

	statement := r.db.QueryBuilder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(order.ID, lines, order.Amount, order.Currency, order.MerchantAccount,
			order.BillReference, order.Payload, order.VerificationKey, order.Status,
			order.CreatedAt, order.ExpiresAt)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	_, err = r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := r.db.QueryBuilder.Update(ordersTable).
		Set("payload", order.Payload).
		Set("verification_key", order.VerificationKey).
		Set("status", order.Status).
		Set("expires_at", order.ExpiresAt).
		Where(sq.Eq{"id": order.ID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDataNotFound
	}
	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return r.readOne(ctx, sq.Eq{"id": orderID})
}

func (r *Repository) ReadOrderByVerificationKey(ctx context.Context, key string) (*domain.Order, error) {
	return r.readOne(ctx, sq.Eq{"verification_key": key})
}

func (r *Repository) readOne(ctx context.Context, pred sq.Eq) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From(ordersTable).
		Where(pred)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) ListPendingOrders(ctx context.Context) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"status": []domain.OrderStatus{
			domain.OrderStatusAwaitingPayment,
			domain.OrderStatusVerifying,
		}})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	var lines []byte

	err := row.Scan(
		&order.ID,
		&lines,
		&order.Amount,
		&order.Currency,
		&order.MerchantAccount,
		&order.BillReference,
		&order.Payload,
		&order.VerificationKey,
		&order.Status,
		&order.CreatedAt,
		&order.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &order.Lines); err != nil {
			return nil, err
		}
	}
	return &order, nil
}
