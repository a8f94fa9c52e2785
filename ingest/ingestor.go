package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/models"
)

var dialect = goqu.Dialect("postgres")

// insertBatchSize keeps each generated INSERT comfortably under the
// Postgres bind-parameter limit.
const insertBatchSize = 500

// Ingestor loads a generated snapshot into the analytics tables.
type Ingestor struct {
	db *sql.DB
}

func NewIngestor(db *sql.DB) *Ingestor {
	return &Ingestor{db: db}
}

// Ingest writes the whole dataset in one transaction, in foreign key
// order. A constraint violation on any table aborts the load.
func (in *Ingestor) Ingest(ctx context.Context, ds *models.Dataset) error {
	tx, err := in.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, "customers", ds.Customers); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "products", ds.Products); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "orders", ds.Orders); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "order_items", ds.OrderItems); err != nil {
		return err
	}
	if err := insertRows(ctx, tx, "payments", ds.Payments); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingest transaction: %w", err)
	}

	log.Info("Snapshot ingested")
	return nil
}

func insertRows[T any](ctx context.Context, tx *sql.Tx, table string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := make([]interface{}, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, row)
		}

		query, args, err := dialect.Insert(table).Rows(batch...).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("failed to build insert for %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	log.WithFields(log.Fields{"table": table, "rows": len(rows)}).Info("Table loaded")
	return nil
}
