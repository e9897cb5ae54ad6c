package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/jackc/pgx/v5"
	"github.com/railgun-community/railgun-ingester/models"
)

// UpsertBatchSize is the maximum number of rows per INSERT statement.
const UpsertBatchSize = 500

// Writer persists decoded batches. Every batch is written in a single transaction
// together with the checkpoint that covers it.
type Writer struct {
	log         *slog.Logger
	db          DB
	checkpoints *CheckpointStore
}

func NewWriter(log *slog.Logger, db DB, checkpoints *CheckpointStore) *Writer {
	return &Writer{
		log:         log.With("module", "postgres_writer"),
		db:          db,
		checkpoints: checkpoints,
	}
}

// Persist upserts every row of batch by id, table by table in dependency order, then
// saves cp in the same transaction. Nothing is written when any statement fails.
func (w *Writer) Persist(ctx context.Context, batch models.Batch, cp models.Checkpoint) (err error) {
	start := time.Now()

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return errors.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			w.log.Warn("Failed to roll back transaction", "error", rbErr)
		}
	}()

	for _, t := range tables {
		if err = upsert(ctx, tx, t, t.rows(batch)); err != nil {
			return err
		}
	}
	if err = w.checkpoints.Save(ctx, tx, cp); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.Errorf("failed to commit blocks up to %d: %w", cp.BlockNumber, err)
	}
	checkpointBlockGauge.Set(float64(cp.BlockNumber))

	counts := batch.Counts()
	for kind, n := range counts {
		rowsWritten.WithLabelValues(kind.String()).Add(float64(n))
	}
	persistDuration.Observe(time.Since(start).Seconds())
	w.log.Debug("Persisted batch",
		"checkpointBlockNumber", cp.BlockNumber,
		"tables", len(counts),
		"duration", time.Since(start),
	)
	return nil
}

func upsert(ctx context.Context, db Execer, t table, rows [][]any) error {
	for start := 0; start < len(rows); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(rows))
		chunk := rows[start:end]
		args := make([]any, 0, len(chunk)*len(t.columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		if _, err := db.Exec(ctx, upsertStatement(t.kind.String(), t.columns, len(chunk)), args...); err != nil {
			return errors.Errorf("failed to upsert %d rows into %s: %w", len(chunk), t.kind, err)
		}
	}
	return nil
}

// upsertStatement builds INSERT ... ON CONFLICT (id) DO UPDATE for rows rows of columns.
func upsertStatement(name string, columns []string, rows int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pgx.Identifier{name}.Sanitize())
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES ")
	param := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := range columns {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", param)
			param++
		}
		sb.WriteByte(')')
	}
	sb.WriteString(` ON CONFLICT ("id") `)
	if len(columns) == 1 {
		sb.WriteString("DO NOTHING")
		return sb.String()
	}
	sb.WriteString("DO UPDATE SET ")
	for i, c := range quoted[1:] {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c)
		sb.WriteString(" = excluded.")
		sb.WriteString(c)
	}
	return sb.String()
}
