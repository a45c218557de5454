package order_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-kitchen/internal/order"
)

var db *pgxpool.Pool

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestMain(m *testing.M) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "cloud_kitchen_test"),
		envOr("DB_SSLMODE", "disable"),
	)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			pool = nil
			log.Printf("test database not reachable, repository tests will be skipped: %v", pingErr)
		}
		cancel()
	} else {
		log.Printf("failed to configure test database pool, repository tests will be skipped: %v", err)
	}
	db = pool

	exitCode := m.Run()

	if db != nil {
		db.Close()
	}

	os.Exit(exitCode)
}

// setup truncates every table the repository touches and seeds two menu
// items and one customer. Returns the repository plus the seeded ids.
func setup(t *testing.T) (order.Repository, menuSeed) {
	if db == nil {
		t.Skip("test database not available")
	}

	truncate := func() {
		_, err := db.Exec(context.Background(),
			`TRUNCATE TABLE order_items, orders, menu_items, customers RESTART IDENTITY CASCADE`)
		if err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
		if _, err := db.Exec(context.Background(), `ALTER SEQUENCE order_number_seq RESTART WITH 1`); err != nil {
			t.Fatalf("failed to reset order number sequence: %v", err)
		}
	}
	truncate()
	t.Cleanup(truncate)

	var seed menuSeed
	err := db.QueryRow(context.Background(),
		`INSERT INTO menu_items (name, category, price) VALUES ('Butter Chicken', 'Main Course', 350) RETURNING id`).
		Scan(&seed.menuItem1)
	require.NoError(t, err, "failed to seed menu item")
	err = db.QueryRow(context.Background(),
		`INSERT INTO menu_items (name, category, price) VALUES ('Masala Chai', 'Beverages', 60) RETURNING id`).
		Scan(&seed.menuItem2)
	require.NoError(t, err, "failed to seed menu item")
	err = db.QueryRow(context.Background(),
		`INSERT INTO customers (name, phone) VALUES ('Rahul Sharma', '9876543210') RETURNING id`).
		Scan(&seed.customer)
	require.NoError(t, err, "failed to seed customer")

	return order.NewRepository(db), seed
}

type menuSeed struct {
	menuItem1 int64
	menuItem2 int64
	customer  int64
}

func newInput(seed menuSeed) *order.CreateOrderInput {
	customerID := seed.customer
	return &order.CreateOrderInput{
		CustomerID:    &customerID,
		TotalAmount:   760,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		PaymentMethod: "UPI",
		Items: []order.CreateOrderItemInput{
			{MenuItemID: seed.menuItem1, Quantity: 2, Price: 350, Status: order.ItemPending},
			{MenuItemID: seed.menuItem2, Quantity: 1, Price: 60, Status: order.ItemPending},
		},
	}
}

func countRows(t *testing.T, table string) int {
	var n int
	err := db.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n)
	require.NoError(t, err, "failed to count rows in %s", table)
	return n
}

func orderStatusInDB(t *testing.T, orderID int64) order.OrderStatus {
	var status order.OrderStatus
	err := db.QueryRow(context.Background(), `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&status)
	require.NoError(t, err, "failed to read order status")
	return status
}

func itemIDs(t *testing.T, orderID int64) []int64 {
	rows, err := db.Query(context.Background(),
		`SELECT id FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	require.NoError(t, err, "failed to query item ids")
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestRepository_CreateOrder(t *testing.T) {
	repo, seed := setup(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, newInput(seed))
	require.NoError(t, err, "CreateOrder should not return an error")
	assert.Regexp(t, `^ORD-\d{6}$`, created.OrderNumber)

	assert.Equal(t, 1, countRows(t, "orders"))
	assert.Equal(t, 2, countRows(t, "order_items"), "every line item should be persisted")
	assert.Equal(t, order.StatusPending, orderStatusInDB(t, created.ID))

	var lastOrderDate *time.Time
	err = db.QueryRow(ctx, `SELECT last_order_date FROM customers WHERE id = $1`, seed.customer).Scan(&lastOrderDate)
	require.NoError(t, err)
	assert.NotNil(t, lastOrderDate, "customer last_order_date should be touched in the same transaction")
}

func TestRepository_CreateOrder_UnknownMenuItemRollsBack(t *testing.T) {
	repo, seed := setup(t)

	input := newInput(seed)
	input.Items[1].MenuItemID = 99999

	_, err := repo.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, order.ErrMenuItemNotFound)

	assert.Equal(t, 0, countRows(t, "orders"), "a failed item insert must roll back the order header")
	assert.Equal(t, 0, countRows(t, "order_items"))
}

func TestRepository_CreateOrder_UnknownCustomerRollsBack(t *testing.T) {
	repo, seed := setup(t)

	input := newInput(seed)
	missing := int64(99999)
	input.CustomerID = &missing

	_, err := repo.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, order.ErrCustomerNotFound)

	assert.Equal(t, 0, countRows(t, "orders"))
	assert.Equal(t, 0, countRows(t, "order_items"))
}

func TestRepository_UpdateItemStatus_PersistsDerivedOrderStatus(t *testing.T) {
	repo, seed := setup(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, newInput(seed))
	require.NoError(t, err)
	ids := itemIDs(t, created.ID)
	require.Len(t, ids, 2)

	// One item starts cooking: order becomes Preparing.
	aggregate, err := repo.UpdateItemStatus(ctx, created.ID, ids[0], order.ItemCooking)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, aggregate)
	assert.Equal(t, order.StatusPreparing, orderStatusInDB(t, created.ID), "derived status must be written in the same transaction")

	// Both items ready: order becomes Ready.
	_, err = repo.UpdateItemStatus(ctx, created.ID, ids[0], order.ItemReady)
	require.NoError(t, err)
	_, err = repo.UpdateItemStatus(ctx, created.ID, ids[1], order.ItemCooking)
	require.NoError(t, err)
	aggregate, err = repo.UpdateItemStatus(ctx, created.ID, ids[1], order.ItemReady)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReady, aggregate)
	assert.Equal(t, order.StatusReady, orderStatusInDB(t, created.ID))
}

func TestRepository_UpdateItemStatus_IllegalTransitionLeavesOrderUntouched(t *testing.T) {
	repo, seed := setup(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, newInput(seed))
	require.NoError(t, err)
	ids := itemIDs(t, created.ID)

	_, err = repo.UpdateItemStatus(ctx, created.ID, ids[0], order.ItemCooking)
	require.NoError(t, err)

	_, err = repo.UpdateItemStatus(ctx, created.ID, ids[0], order.ItemPending)
	assert.ErrorIs(t, err, order.ErrInvalidItemTransition, "a cooking item cannot go back to pending")
	assert.Equal(t, order.StatusPreparing, orderStatusInDB(t, created.ID))
}

func TestRepository_UpdateOrderStatus(t *testing.T) {
	repo, seed := setup(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, newInput(seed))
	require.NoError(t, err)

	t.Run("legal_transition_is_written", func(t *testing.T) {
		previous, err := repo.UpdateOrderStatus(ctx, created.ID, order.StatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPending, previous)
		assert.Equal(t, order.StatusPreparing, orderStatusInDB(t, created.ID))
	})

	t.Run("same_status_reports_previous", func(t *testing.T) {
		previous, err := repo.UpdateOrderStatus(ctx, created.ID, order.StatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPreparing, previous)
	})

	t.Run("illegal_transition_leaves_row_unchanged", func(t *testing.T) {
		_, err := repo.UpdateOrderStatus(ctx, created.ID, order.StatusDelivered)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition, "Preparing -> Delivered skips Ready")
		assert.Equal(t, order.StatusPreparing, orderStatusInDB(t, created.ID))
	})

	t.Run("unknown_order", func(t *testing.T) {
		_, err := repo.UpdateOrderStatus(ctx, 99999, order.StatusPreparing)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}
