package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/forno-labs/pizzabot/agent/contract"
)

type DatabaseConfig struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type pizzaRow struct {
	bun.BaseModel `bun:"table:pizzas,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull,unique"`
	Ingredients string    `bun:"ingredients,notnull"`
	Price       float64   `bun:"price,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PostgresCatalog owns the pizzas table. It exists for seeding and for
// hydrating the in-memory Store at process start; per-turn lookups never
// touch the database.
type PostgresCatalog struct {
	db *bun.DB
}

func OpenPostgres(cfg DatabaseConfig) (*PostgresCatalog, error) {
	dsn := strings.TrimSpace(cfg.URL)
	if dsn == "" {
		return nil, errors.New("database url is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(cfg.Timeout),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresCatalog{db: db}, nil
}

func (c *PostgresCatalog) Close() error {
	return c.db.Close()
}

// Ping reports database connectivity for the health probe.
func (c *PostgresCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// EnsureSchema creates the pizzas table when missing.
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.NewCreateTable().Model((*pizzaRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create pizzas table: %w", err)
	}
	return nil
}

// Seed inserts the built-in catalog. It is idempotent: a non-empty table
// is left alone so operator edits survive restarts.
func (c *PostgresCatalog) Seed(ctx context.Context) error {
	count, err := c.db.NewSelect().Model((*pizzaRow)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count pizzas: %w", err)
	}
	if count > 0 {
		log.Debug().Int("pizzas", count).Msg("menu already seeded")
		return nil
	}

	rows := make([]pizzaRow, 0, len(SeedItems()))
	for _, item := range SeedItems() {
		rows = append(rows, pizzaRow{
			Name:        item.Name,
			Ingredients: item.Ingredients,
			Price:       item.UnitPrice.InexactFloat64(),
		})
	}
	if _, err := c.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("seed pizzas: %w", err)
	}
	log.Info().Int("pizzas", len(rows)).Msg("seeded menu")
	return nil
}

// LoadStore reads the full catalog into an immutable in-memory Store.
func (c *PostgresCatalog) LoadStore(ctx context.Context) (*Store, error) {
	var rows []pizzaRow
	if err := c.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load pizzas: %w", err)
	}

	items := make([]contractx.MenuItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, contractx.MenuItem{
			Name:        row.Name,
			Ingredients: row.Ingredients,
			UnitPrice:   decimal.NewFromFloat(row.Price).Round(2),
		})
	}
	return NewStore(items), nil
}
