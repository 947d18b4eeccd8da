package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/models"
	"github.com/google/uuid"
)

func CreateProduct(ctx context.Context, db *sql.DB, p *models.Product) (*models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.ProductAvailable
		if p.Quantity == 0 {
			p.Status = models.ProductNotAvailable
		}
	}

	query := `
		INSERT INTO products (id, name, category, image, price, offer, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Category, p.Image, p.Price, p.Offer, p.Quantity, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return p, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, category, image, price, offer, quantity, status, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Image,
		&product.Price,
		&product.Offer,
		&product.Quantity,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// lockProduct reads a product row FOR UPDATE so that concurrent reservation
// transactions serialize per product.
func lockProduct(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, name, category, image, price, offer, quantity, status, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE`

	err := tx.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Image,
		&product.Price,
		&product.Offer,
		&product.Quantity,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}

	return product, nil
}

// DecrementStock takes quantity off a product, guarded so stock can never go
// negative even without the caller's row lock. Hitting exactly zero flips the
// product to Not Available.
func DecrementStock(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET quantity = quantity - $1,
		     status = CASE WHEN quantity - $1 = 0 THEN 'Not Available' ELSE status END,
		     updated_at = NOW()
		 WHERE id = $2
		   AND quantity >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}

// RestoreStock adds a cancelled or failed reservation's quantity back and
// flips the product to Available again. Returns ErrProductNotFound when the
// product has since been removed; callers restoring a whole order skip those.
func RestoreStock(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET quantity = quantity + $1,
		     status = CASE WHEN quantity + $1 > 0 THEN 'Available' ELSE status END,
		     updated_at = NOW()
		 WHERE id = $2`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, name, category, image, price, offer, quantity, status, created_at, updated_at
		FROM products
		ORDER BY category, name
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Image,
			&product.Price,
			&product.Offer,
			&product.Quantity,
			&product.Status,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(products, total, page, pageSize), nil
}

// DeleteAllProducts empties the catalog; used by the seeder before a fresh
// insert.
func DeleteAllProducts(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return result.RowsAffected()
}

// InsertProducts bulk-loads a catalog in one transaction.
func InsertProducts(ctx context.Context, db *sql.DB, products []models.Product) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		for i := range products {
			p := &products[i]
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.Status == "" {
				p.Status = models.ProductAvailable
				if p.Quantity == 0 {
					p.Status = models.ProductNotAvailable
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO products (id, name, category, image, price, offer, quantity, status, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
				p.ID, p.Name, p.Category, p.Image, p.Price, p.Offer, p.Quantity, p.Status)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", p.Name, err)
			}
		}
		return nil
	})
}
