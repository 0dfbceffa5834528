package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storecart/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartRow struct {
	CartID    string          `db:"cart_id"`
	ProductID string          `db:"product_id"`
	Title     string          `db:"title"`
	Price     decimal.Decimal `db:"price"`
	Discount  decimal.Decimal `db:"discount"`
	Thumbnail string          `db:"thumbnail"`
	SellerID  string          `db:"seller_id"`
	Quantity  int             `db:"quantity"`
}

// Lines joins the user's cart rows to their products, oldest row first.
// An empty sellerID means every seller.
func (r *CartRepo) Lines(ctx context.Context, userID, sellerID string) ([]domain.LineItem, error) {
	q := `
	  SELECT CAST(c.cart_id AS TEXT) AS cart_id, c.product_id, p.title, p.price, p.discount,
	         p.thumbnail, p.seller_id, c.quantity
	  FROM cart c JOIN product p ON p.id = c.product_id
	  WHERE c.user_id = ?`
	args := []any{userID}
	if sellerID != "" {
		q += ` AND p.seller_id = ?`
		args = append(args, sellerID)
	}
	q += ` ORDER BY c.cart_id`

	var rows []cartRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.LineItem, 0, len(rows))
	for _, row := range rows {
		p := domain.Product{Price: row.Price, Discount: row.Discount}
		out = append(out, domain.LineItem{
			RowID:     row.CartID,
			ProductID: row.ProductID,
			Title:     row.Title,
			UnitPrice: p.NetPrice(),
			Thumbnail: row.Thumbnail,
			Quantity:  row.Quantity,
			SellerID:  row.SellerID,
		})
	}
	return out, nil
}

// Upsert adds qty to the user's row for productID, creating it if needed.
func (r *CartRepo) Upsert(ctx context.Context, userID, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart(user_id, product_id, quantity, created_at)
		VALUES(?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = cart.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
	`, userID, productID, qty)
	return err
}

func (r *CartRepo) Delete(ctx context.Context, userID, rowID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE user_id = ? AND cart_id = ?`, userID, rowID)
	return err
}

// DeleteAll removes the user's rows, only those of sellerID when it is set.
func (r *CartRepo) DeleteAll(ctx context.Context, userID, sellerID string) error {
	q, args := deleteScope(userID, sellerID)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

func deleteScope(userID, sellerID string) (string, []any) {
	if sellerID == "" {
		return `DELETE FROM cart WHERE user_id = ?`, []any{userID}
	}
	return `DELETE FROM cart WHERE user_id = ? AND product_id IN (SELECT id FROM product WHERE seller_id = ?)`,
		[]any{userID, sellerID}
}

// Replace swaps the user's rows (within the seller scope) for items in one
// transaction.
func (r *CartRepo) Replace(ctx context.Context, userID, sellerID string, items []domain.LineItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q, args := deleteScope(userID, sellerID)
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cart(user_id, product_id, quantity, created_at)
			VALUES(?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id, product_id) DO UPDATE
			SET quantity = cart.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
		`, userID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UserCart is the row-backed cart store for one user. Seller scope is a
// filter applied by readers; only DeleteAll takes it.
type UserCart struct {
	repo   *CartRepo
	userID string
}

func (r *CartRepo) For(userID string) *UserCart {
	return &UserCart{repo: r, userID: userID}
}

func (u *UserCart) Load(ctx context.Context) ([]domain.LineItem, error) {
	return u.repo.Lines(ctx, u.userID, "")
}

func (u *UserCart) Save(ctx context.Context, items []domain.LineItem) error {
	return u.repo.Replace(ctx, u.userID, "", items)
}

func (u *UserCart) Upsert(ctx context.Context, item domain.LineItem) error {
	return u.repo.Upsert(ctx, u.userID, item.ProductID, item.Quantity)
}

func (u *UserCart) Delete(ctx context.Context, rowID string) error {
	return u.repo.Delete(ctx, u.userID, rowID)
}

func (u *UserCart) DeleteAll(ctx context.Context, sellerID string) error {
	return u.repo.DeleteAll(ctx, u.userID, sellerID)
}
