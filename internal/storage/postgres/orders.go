package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/domain/repository"
)

const defaultListLimit = 100

const orderColumns = `id, user_id, status, rejection_reason,
                      COALESCE(measurement_date, ''), COALESCE(measurement_time, ''),
                      student_name, student_email, student_number, department, level, gender,
                      created_at, updated_at, version`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o          model.Order
		date, slot string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.RejectionReason, &date, &slot,
		&o.StudentInfo.Name, &o.StudentInfo.Email, &o.StudentInfo.StudentNumber,
		&o.StudentInfo.Department, &o.StudentInfo.Level, &o.StudentInfo.Gender,
		&o.CreatedAt, &o.UpdatedAt, &o.Version)
	if err != nil {
		return model.Order{}, err
	}
	if date != "" {
		o.MeasurementSchedule = &model.MeasurementSchedule{Date: date, Time: slot}
	}
	return o, nil
}

func scheduleColumns(s *model.MeasurementSchedule) (date, slot *string) {
	if s == nil {
		return nil, nil
	}
	d, t := s.Date, s.Time
	return &d, &t
}

// loadReceipts attaches receipts to orders in place, keeping submission order.
func loadReceipts(ctx context.Context, q querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	const query = `SELECT order_id, type, or_number, amount, date_paid, image, is_verified
                   FROM receipts WHERE order_id = ANY($1) ORDER BY order_id, position`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			r       model.Receipt
		)
		if err := rows.Scan(&orderID, &r.Type, &r.ORNumber, &r.Amount, &r.DatePaid, &r.Image, &r.IsVerified); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Receipts = append(orders[i].Receipts, r)
		}
	}
	return rows.Err()
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (id, user_id, status, rejection_reason, measurement_date, measurement_time,
                             student_name, student_email, student_number, department, level, gender)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
                         RETURNING created_at, updated_at`
	const insertReceipt = `INSERT INTO receipts (order_id, type, position, or_number, amount, date_paid, image, is_verified)
                           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	created := order.Clone()
	date, slot := scheduleColumns(order.MeasurementSchedule)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		info := order.StudentInfo
		err := tx.QueryRow(ctx, insertOrder, order.ID, order.UserID, order.Status, order.RejectionReason, date, slot,
			info.Name, info.Email, info.StudentNumber, info.Department, info.Level, info.Gender,
		).Scan(&created.CreatedAt, &created.UpdatedAt)
		if err != nil {
			return err
		}
		for i, rc := range order.Receipts {
			if _, err := tx.Exec(ctx, insertReceipt, order.ID, rc.Type, i, rc.ORNumber, rc.Amount, rc.DatePaid, rc.Image, rc.IsVerified); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	orders := []model.Order{order}
	if err := loadReceipts(ctx, r.storage.pool, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if filter.Status == nil {
		query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
		return r.list(ctx, query, limit)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status=$1 ORDER BY created_at DESC LIMIT $2`
	return r.list(ctx, query, *filter.Status, limit)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := loadReceipts(ctx, r.storage.pool, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Update stores order when both the persisted status and version still match
// what the caller read. Receipt flags are only ever raised.
func (r *orderRepository) Update(ctx context.Context, order model.Order, expected model.OrderStatus, notifications []model.Notification) (*model.Order, error) {
	const updateOrder = `UPDATE orders
                         SET status=$1, rejection_reason=$2, measurement_date=$3, measurement_time=$4,
                             updated_at=NOW(), version=version+1
                         WHERE id=$5 AND status=$6 AND version=$7
                         RETURNING updated_at, version`
	const verifyReceipt = `UPDATE receipts SET is_verified = is_verified OR $1 WHERE order_id=$2 AND type=$3`
	const insertNotification = `INSERT INTO notifications (order_id, user_id, kind, status, message)
                                VALUES ($1, $2, $3, $4, $5)`

	updated := order.Clone()
	date, slot := scheduleColumns(order.MeasurementSchedule)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, updateOrder, order.Status, order.RejectionReason, date, slot, order.ID, expected, order.Version).
			Scan(&updated.UpdatedAt, &updated.Version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrConflict
			}
			return err
		}
		for _, rc := range order.Receipts {
			if !rc.IsVerified {
				continue
			}
			if _, err := tx.Exec(ctx, verifyReceipt, true, order.ID, rc.Type); err != nil {
				return err
			}
		}
		for _, n := range notifications {
			if _, err := tx.Exec(ctx, insertNotification, order.ID, n.UserID, n.Kind, n.Status, n.Message); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
