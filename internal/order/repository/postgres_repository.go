package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/2005arun/Food-ordering/internal/order/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const orderColumns = `id, owner_id, restaurant_id, restaurant_name, delivery_address, lines,
	subtotal, delivery_fee, tax, total, status, payment_status, payment_ref,
	special_instructions, estimated_delivery, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	log.Println("Connected to postgres")
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Create(ctx context.Context, order *domain.Order, event *OutboxEvent) error {
	linesJSON, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal order lines: %w", err)
	}
	addressJSON, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `INSERT INTO orders (id, owner_id, restaurant_id, restaurant_name, delivery_address, lines,
	        subtotal, delivery_fee, tax, total, status, payment_status, payment_ref,
	        special_instructions, estimated_delivery, created_at, updated_at)
	        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`

	if _, err := tx.ExecContext(ctx, orderQuery,
		order.ID,
		order.OwnerID,
		order.RestaurantID,
		order.RestaurantName,
		addressJSON,
		linesJSON,
		order.Subtotal,
		order.DeliveryFee,
		order.Tax,
		order.Total,
		order.Status,
		order.PaymentStatus,
		order.PaymentRef,
		order.SpecialInstructions,
		order.EstimatedDelivery,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	eventQuery := `INSERT INTO order_outbox (id, aggregate_id, event_type, payload, created_at)
	        VALUES ($1, $2, $3, $4, NOW())`

	if _, err := tx.ExecContext(ctx, eventQuery,
		event.ID,
		event.AggregateID,
		event.EventType,
		event.Payload,
	); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*domain.Order, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM orders WHERE owner_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders
	        WHERE owner_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders by owner: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, total, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	query := `UPDATE orders SET status = $2, updated_at = NOW()
	        WHERE id = $1 RETURNING ` + orderColumns

	row := r.db.QueryRowContext(ctx, query, id, status)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return order, nil
}

// UpdatePaymentStatus couples the derived order status to the payment
// outcome in the same UPDATE, so a reader never observes a half-updated
// record: COMPLETED confirms the order, anything else leaves it PENDING.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, paymentRef string) (*domain.Order, error) {
	query := `UPDATE orders SET
	        payment_status = $2,
	        payment_ref = $3,
	        status = CASE WHEN $2 = 'COMPLETED' THEN 'CONFIRMED' ELSE 'PENDING' END,
	        updated_at = NOW()
	        WHERE id = $1 RETURNING ` + orderColumns

	row := r.db.QueryRowContext(ctx, query, id, status, paymentRef)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return order, nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, aggregate_id, event_type, payload, created_at
	        FROM order_outbox WHERE processed_at IS NULL
	        ORDER BY created_at ASC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(
			&event.ID,
			&event.AggregateID,
			&event.EventType,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("outbox event %s not found", id)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var linesJSON, addressJSON []byte

	err := row.Scan(
		&order.ID,
		&order.OwnerID,
		&order.RestaurantID,
		&order.RestaurantName,
		&addressJSON,
		&linesJSON,
		&order.Subtotal,
		&order.DeliveryFee,
		&order.Tax,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentRef,
		&order.SpecialInstructions,
		&order.EstimatedDelivery,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(linesJSON, &order.Lines); err != nil {
		return nil, fmt.Errorf("unmarshal order lines: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("unmarshal delivery address: %w", err)
	}

	return &order, nil
}
