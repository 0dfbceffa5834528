package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storecart/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, title, meta_title, price, discount, thumbnail, seller_id, active`

// Get returns an active product; sql.ErrNoRows when it is missing or retired.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM product WHERE id = ? AND active = 1`, id)
	return p, err
}

func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM product
	  WHERE active = 1 AND (? = '' OR seller_id = ?)
	  ORDER BY title
	`, sellerID, sellerID)
	return out, err
}
