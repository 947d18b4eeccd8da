package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/craftculture/orders-api/internal/database"
	"github.com/craftculture/orders-api/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// totalTolerance is the absolute slack allowed between the client-declared
// total and the server-side recomputation.
var totalTolerance = decimal.RequireFromString("0.01")

const deliveryEstimateDays = 5

// PlaceOrder validates the cart, reserves stock per line item, cross-checks
// the declared total and persists the order — all inside one serializable
// transaction. On any failure the transaction rolls back, so every stock
// decrement is undone and no partial reservation survives; the original
// failure is returned unchanged.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		// Reserve sequentially, in request order. A later item's failure
		// must abort before any further decrement, and the rollback set
		// has to be exactly the decrements made so far.
		for _, item := range req.Items {
			product, err := lockProduct(ctx, tx, item.ProductID)
			if err != nil {
				if err == database.ErrProductNotFound {
					return fmt.Errorf("%w: %s", database.ErrProductNotFound, item.Name)
				}
				return err
			}

			if product.Status != models.ProductAvailable {
				return fmt.Errorf("%w: %s", database.ErrProductUnavailable, item.Name)
			}
			if product.Quantity < item.Quantity {
				return fmt.Errorf("%w for %s: %d available", database.ErrInsufficientStock, item.Name, product.Quantity)
			}
			// Compare against the store's values now, not at cart-build
			// time, so stale or tampered cart prices are rejected.
			if !product.Price.Equal(item.Price) || !product.Offer.Equal(item.Offer) {
				return fmt.Errorf("%w for %s", database.ErrPriceMismatch, item.Name)
			}

			if err := DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("%w for %s", err, item.Name)
			}
		}

		computed := decimal.Zero
		for _, item := range req.Items {
			computed = computed.Add(item.LineTotal())
		}
		if computed.Sub(req.TotalAmount).Abs().GreaterThan(totalTolerance) {
			return fmt.Errorf("%w: calculated %s, declared %s",
				database.ErrTotalMismatch, computed.StringFixed(2), req.TotalAmount.StringFixed(2))
		}

		now := time.Now().UTC()
		order = &models.Order{
			ID:            uuid.NewString(),
			Username:      req.Username,
			FullName:      req.FullName,
			Email:         req.Email,
			Phone:         req.Phone,
			Items:         req.Items,
			TotalAmount:   req.TotalAmount,
			Address:       req.Address,
			PaymentMethod: models.PaymentMethod(req.PaymentMethod),
			Status:        models.OrderStatusPending,
			OrderDate:     now,
			DeliveryDate:  now.AddDate(0, 0, deliveryEstimateDays),
		}

		return insertOrder(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *models.Order) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO orders (id, username, full_name, email, phone, total_amount,
		                     street, city, state, postal_code, payment_method,
		                     status, order_date, delivery_date, tracking_number, notes,
		                     created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, '', '', NOW(), NOW())
		 RETURNING created_at, updated_at`,
		o.ID, o.Username, o.FullName, o.Email, o.Phone, o.TotalAmount,
		o.Address.Street, o.Address.City, o.Address.State, o.Address.PostalCode,
		o.PaymentMethod, o.Status, o.OrderDate, o.DeliveryDate,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	for _, item := range o.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, name, price, quantity, offer)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, item.ProductID, item.Name, item.Price, item.Quantity, item.Offer)
		if err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, username, full_name, email, phone, total_amount,
	street, city, state, postal_code, payment_method,
	status, order_date, delivery_date, tracking_number, notes,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner, o *models.Order) error {
	return row.Scan(
		&o.ID,
		&o.Username,
		&o.FullName,
		&o.Email,
		&o.Phone,
		&o.TotalAmount,
		&o.Address.Street,
		&o.Address.City,
		&o.Address.State,
		&o.Address.PostalCode,
		&o.PaymentMethod,
		&o.Status,
		&o.OrderDate,
		&o.DeliveryDate,
		&o.TrackingNumber,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func GetOrder(ctx context.Context, db *sql.DB, id string) (*models.Order, error) {
	order := &models.Order{}

	row := db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err := scanOrder(row, order); err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := loadOrderItems(ctx, db, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadOrderItems(ctx context.Context, q querier, orderIDs []string) (map[string][]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[string][]models.OrderItem{}, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT order_id, product_id, name, price, quantity, offer
		 FROM order_items
		 WHERE order_id = ANY($1)
		 ORDER BY id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID string
		var item models.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &item.Offer); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus applies a post-creation status transition. Cancelled
// orders are terminal. Transitioning to Cancelled restores every line item's
// stock in the same transaction; products removed since the order was placed
// are skipped. Delivered overwrites the delivery date with the actual time.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID string, status models.OrderStatus, trackingNumber, notes string) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		order = &models.Order{}
		row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
		if err := scanOrder(row, order); err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("get order: %w", err)
		}

		if order.Status == models.OrderStatusCancelled {
			return database.ErrOrderCancelled
		}

		items, err := loadOrderItems(ctx, tx, []string{orderID})
		if err != nil {
			return err
		}
		order.Items = items[orderID]

		if status == models.OrderStatusCancelled {
			for _, item := range order.Items {
				err := RestoreStock(ctx, tx, item.ProductID, item.Quantity)
				if err == database.ErrProductNotFound {
					continue
				}
				if err != nil {
					return err
				}
			}
		}

		order.Status = status
		if t := strings.TrimSpace(trackingNumber); t != "" {
			order.TrackingNumber = t
		}
		if n := strings.TrimSpace(notes); n != "" {
			order.Notes = n
		}
		if status == models.OrderStatusDelivered {
			order.DeliveryDate = time.Now().UTC()
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $2, tracking_number = $3, notes = $4, delivery_date = $5, updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			order.ID, order.Status, order.TrackingNumber, order.Notes, order.DeliveryDate,
		).Scan(&order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

type ListOrdersFilter struct {
	Status    models.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	SortBy    string
}

type StatusStat struct {
	Status      models.OrderStatus `json:"status"`
	Count       int64              `json:"count"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
}

type PaymentStat struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Count         int64                `json:"count"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
}

type OrderList struct {
	Orders       []models.Order `json:"orders"`
	TotalPages   int            `json:"totalPages"`
	CurrentPage  int            `json:"currentPage"`
	TotalOrders  int64          `json:"totalOrders"`
	OrderStats   []StatusStat   `json:"orderStats"`
	PaymentStats []PaymentStat  `json:"paymentStats"`
}

// sortColumns whitelists the sortBy values the API accepts; client strings
// are never interpolated into SQL directly.
var sortColumns = map[string]string{
	"orderDate":    "order_date ASC",
	"-orderDate":   "order_date DESC",
	"totalAmount":  "total_amount ASC",
	"-totalAmount": "total_amount DESC",
	"status":       "status ASC",
	"-status":      "status DESC",
}

// ListOrders is read-only: it filters, pages and aggregates the ledger as of
// call time and never mutates state.
func ListOrders(ctx context.Context, db *sql.DB, filter ListOrdersFilter) (*OrderList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = sortColumns["-orderDate"]
	}

	var conditions []string
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	pageArgs := append(append([]interface{}{}, args...), filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, orderBy, len(args)+1, len(args)+2)

	rows, err := db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var orderIDs []string
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	items, err := loadOrderItems(ctx, db, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	orderStats, err := orderStatusStats(ctx, db, whereClause, args)
	if err != nil {
		return nil, err
	}
	paymentStats, err := paymentMethodStats(ctx, db, whereClause, args)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		totalPages++
	}

	return &OrderList{
		Orders:       orders,
		TotalPages:   totalPages,
		CurrentPage:  filter.Page,
		TotalOrders:  total,
		OrderStats:   orderStats,
		PaymentStats: paymentStats,
	}, nil
}

func orderStatusStats(ctx context.Context, db *sql.DB, whereClause string, args []interface{}) ([]StatusStat, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`+whereClause+` GROUP BY status`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	defer rows.Close()

	var stats []StatusStat
	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan order stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func paymentMethodStats(ctx context.Context, db *sql.DB, whereClause string, args []interface{}) ([]PaymentStat, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT payment_method, COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`+whereClause+` GROUP BY payment_method`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("payment stats: %w", err)
	}
	defer rows.Close()

	var stats []PaymentStat
	for rows.Next() {
		var s PaymentStat
		if err := rows.Scan(&s.PaymentMethod, &s.Count, &s.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan payment stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetOrdersByUsername returns a customer's orders, newest first. Read-only.
func GetOrdersByUsername(ctx context.Context, db *sql.DB, username string) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE username = $1 ORDER BY order_date DESC`,
		username)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var orderIDs []string
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	items, err := loadOrderItems(ctx, db, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}
