package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrCustomerNotFound  = errors.New("customer not found")
)

type Repository interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreatedOrder, error)
	GetOrderByID(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus) (OrderStatus, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID int64, newStatus ItemStatus) (OrderStatus, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// CreateOrder inserts the order header, its items and the customer touch as
// one transaction. Nothing is visible to readers unless the commit succeeds.
func (r *postgresRepository) CreateOrder(ctx context.Context, input *CreateOrderInput) (created *CreatedOrder, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Msg("repository: create order transaction failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Msg("repository: failed to commit transaction")
				created = nil
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	// The sequence keeps order numbers unique under concurrent creation;
	// clock-derived numbers can collide.
	var seq int64
	if err = tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("repository: failed to allocate order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ORD-%06d", seq)

	var orderID int64
	queryOrder := `
		INSERT INTO orders (order_number, customer_id, total_amount, status, delivery_address, payment_status, payment_method, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = tx.QueryRow(ctx, queryOrder,
		orderNumber,
		input.CustomerID,
		input.TotalAmount,
		string(input.Status),
		input.DeliveryAddress,
		string(input.PaymentStatus),
		input.PaymentMethod,
		time.Now().UTC(),
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert order: %w", mapConstraintError(err))
	}

	queryItem := `
		INSERT INTO order_items (order_id, menu_item_id, quantity, price, status, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, item := range input.Items {
		_, err = tx.Exec(ctx, queryItem,
			orderID,
			item.MenuItemID,
			item.Quantity,
			item.Price,
			string(item.Status),
			item.SpecialInstructions,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", orderNumber, mapConstraintError(err))
		}
	}

	if input.CustomerID != nil {
		cmdTag, updErr := tx.Exec(ctx, `UPDATE customers SET last_order_date = NOW() WHERE id = $1`, *input.CustomerID)
		if updErr != nil {
			err = fmt.Errorf("repository: failed to update customer last order date: %w", updErr)
			return nil, err
		}
		if cmdTag.RowsAffected() == 0 {
			err = ErrCustomerNotFound
			return nil, err
		}
	}

	return &CreatedOrder{ID: orderID, OrderNumber: orderNumber}, nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	queryOrder := `
		SELECT o.id, o.order_number, o.customer_id, o.total_amount, o.status,
		       o.delivery_address, o.payment_status, o.payment_method, o.order_date,
		       COALESCE(c.name, ''), COALESCE(c.phone, '')
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		WHERE o.id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, id).Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.TotalAmount,
		&o.Status,
		&o.DeliveryAddress,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.OrderDate,
		&o.CustomerName,
		&o.CustomerPhone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %d: %w", id, err)
	}

	items, err := r.queryItems(ctx, `WHERE oi.order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListOrders returns every order, newest first, each with its items and the
// denormalized customer name/phone. Items are fetched in a second query and
// stitched in memory to avoid one round trip per order.
func (r *postgresRepository) ListOrders(ctx context.Context) ([]Order, error) {
	queryOrders := `
		SELECT o.id, o.order_number, o.customer_id, o.total_amount, o.status,
		       o.delivery_address, o.payment_status, o.payment_method, o.order_date,
		       COALESCE(c.name, ''), COALESCE(c.phone, '')
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id
		ORDER BY o.order_date DESC
	`

	rows, err := r.db.Query(ctx, queryOrders)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[int64]*Order)
	var orderIDs []int64

	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.CustomerID,
			&o.TotalAmount,
			&o.Status,
			&o.DeliveryAddress,
			&o.PaymentStatus,
			&o.PaymentMethod,
			&o.OrderDate,
			&o.CustomerName,
			&o.CustomerPhone,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	items, err := r.queryItems(ctx, `WHERE oi.order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}

	return result, nil
}

func (r *postgresRepository) queryItems(ctx context.Context, where string, arg any) ([]OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price,
		       oi.status, oi.special_instructions, mi.name, COALESCE(mi.description, '')
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		` + where + `
		ORDER BY oi.id
	`

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Quantity,
			&item.Price,
			&item.Status,
			&item.SpecialInstructions,
			&item.Name,
			&item.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return items, nil
}

// UpdateOrderStatus checks the transition and writes the new status while
// holding the row lock, so two concurrent callers cannot both pass the
// check and interleave an illegal move. Returns the status the order had
// before the call; previous == newStatus means nothing was written.
func (r *postgresRepository) UpdateOrderStatus(ctx context.Context, orderID int64, newStatus OrderStatus) (previous OrderStatus, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return "", fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				previous, err = "", fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("repository: failed to lock order %d: %w", orderID, err)
	}

	if previous == newStatus {
		return previous, nil
	}

	if err = ValidateTransition(previous, newStatus); err != nil {
		return "", err
	}

	if _, err = tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(newStatus), orderID); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		err = fmt.Errorf("repository: failed to update order status for %d: %w", orderID, err)
		return "", err
	}

	return previous, nil
}

// UpdateItemStatus moves one line item to newStatus and recomputes the
// aggregate order status from the full item set in the same transaction,
// so the stored status never disagrees with the items. Terminal orders are
// left untouched. Returns the order status in effect after the commit.
func (r *postgresRepository) UpdateItemStatus(ctx context.Context, orderID, itemID int64, newStatus ItemStatus) (result OrderStatus, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return "", fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				result, err = "", fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	var orderStatus OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&orderStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderNotFound
		}
		return "", fmt.Errorf("repository: failed to lock order %d: %w", orderID, err)
	}

	var itemStatus ItemStatus
	err = tx.QueryRow(ctx, `SELECT status FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID).Scan(&itemStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrOrderItemNotFound
		}
		return "", fmt.Errorf("repository: failed to select order item %d: %w", itemID, err)
	}

	if err = ValidateItemTransition(itemStatus, newStatus); err != nil {
		return "", err
	}

	_, err = tx.Exec(ctx, `UPDATE order_items SET status = $1 WHERE id = $2`, string(newStatus), itemID)
	if err != nil {
		return "", fmt.Errorf("repository: failed to update order item status: %w", err)
	}

	rows, queryErr := tx.Query(ctx, `SELECT status FROM order_items WHERE order_id = $1`, orderID)
	if queryErr != nil {
		err = fmt.Errorf("repository: failed to query sibling item statuses: %w", queryErr)
		return "", err
	}
	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if scanErr := rows.Scan(&item.Status); scanErr != nil {
			rows.Close()
			err = fmt.Errorf("repository: failed to scan item status: %w", scanErr)
			return "", err
		}
		items = append(items, item)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return "", fmt.Errorf("repository: error iterating item statuses: %w", err)
	}

	derived := DeriveOrderStatus(items, orderStatus)
	if !IsTerminal(orderStatus) && derived != orderStatus {
		if _, err = tx.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(derived), orderID); err != nil {
			return "", fmt.Errorf("repository: failed to update derived order status: %w", err)
		}
		orderStatus = derived
	}

	return orderStatus, nil
}

// mapConstraintError turns foreign key violations into caller-visible
// sentinel errors; anything else passes through for the 500 path.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		switch pgErr.ConstraintName {
		case "order_items_menu_item_id_fkey":
			return ErrMenuItemNotFound
		case "orders_customer_id_fkey":
			return ErrCustomerNotFound
		}
	}
	return err
}
