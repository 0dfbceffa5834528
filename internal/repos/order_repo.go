package repos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storecart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, user_id, status, total, ship_to, contact_name, contact_email, contact_phone, created_at`

// Create inserts the order header and its lines in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, user_id, status, total, ship_to, contact_name, contact_email, contact_phone, created_at)
	  VALUES
	    (?,  ?,       ?,      ?,     ?,       ?,            ?,             ?,             CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.Status, o.Total, o.ShipTo, o.ContactName, o.ContactEmail, o.ContactPhone); err != nil {
		return err
	}
	for _, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, product_id, title, price, quantity, line_total, seller_id)
		  VALUES(?, ?, ?, ?, ?, ?, ?)
		`, o.ID, l.ProductID, l.Title, l.UnitPrice, l.Quantity, l.LineTotal, l.SellerID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MarkForReconciliation flags an order whose cart could not be cleared.
func (r *OrderRepo) MarkForReconciliation(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`,
		domain.OrderStatusNeedsReconciliation, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	if err := r.db.GetContext(ctx, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID); err != nil {
		return domain.Order{}, err
	}
	if err := r.db.SelectContext(ctx, &o.Lines, `
		SELECT product_id, title, price, quantity, line_total, seller_id
		FROM order_items
		WHERE order_id = ?
		ORDER BY title
	`, orderID); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// ListByUser returns the user's orders, newest first, without lines.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC, id
	`, userID)
	return out, err
}

func (r *OrderRepo) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out, `
		SELECT `+orderCols+`
		FROM orders
		WHERE status = ?
		ORDER BY datetime(created_at), id
	`, status)
	return out, err
}

// Resolve returns a reconciled order to pending. Orders in any other status
// are left alone and reported as not found.
func (r *OrderRepo) Resolve(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		domain.OrderStatusPending, orderID, domain.OrderStatusNeedsReconciliation)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
