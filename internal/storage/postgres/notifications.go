package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// MaxDispatchAttempts bounds delivery retries of a single notification.
const MaxDispatchAttempts = 10

func (r *notificationRepository) SelectBatchForDispatch(ctx context.Context, limit int) ([]model.Notification, error) {
	const selectQuery = `SELECT id, order_id, user_id, kind, status, message, attempts, created_at
                         FROM notifications
                         WHERE dispatched_at IS NULL AND attempts < $1
                         ORDER BY id
                         LIMIT $2
                         FOR UPDATE SKIP LOCKED`

	var batch []model.Notification
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, MaxDispatchAttempts, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var n model.Notification
			if err := rows.Scan(&n.ID, &n.OrderID, &n.UserID, &n.Kind, &n.Status, &n.Message, &n.Attempts, &n.CreatedAt); err != nil {
				return err
			}
			batch = append(batch, n)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		rows.Close()

		for i := range batch {
			if _, err := tx.Exec(ctx, `UPDATE notifications SET attempts=attempts+1 WHERE id=$1`, batch[i].ID); err != nil {
				return err
			}
			batch[i].Attempts++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *notificationRepository) MarkDispatched(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE notifications SET dispatched_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
