package postgres_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	SQL  string
	Args []any
}

// fakeDB records statements. Statements executed inside a transaction are only
// visible in committed once the transaction commits.
type fakeDB struct {
	execs     []execCall
	committed []execCall
	execErr   func(sql string) error
	row       fakeRow

	begun      int
	commits    int
	rollbacks  int
	commitErr  error
	queriedSQL []string
	queryArgs  [][]any
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if db.execErr != nil {
		if err := db.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	db.execs = append(db.execs, execCall{SQL: sql, Args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.queriedSQL = append(db.queriedSQL, sql)
	db.queryArgs = append(db.queryArgs, args)
	return db.row
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.begun++
	return &fakeTx{db: db}, nil
}

type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	pending []execCall
	closed  bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx.db.execErr != nil {
		if err := tx.db.execErr(sql); err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	tx.pending = append(tx.pending, execCall{SQL: sql, Args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	if tx.db.commitErr != nil {
		return tx.db.commitErr
	}
	tx.closed = true
	tx.db.commits++
	tx.db.committed = append(tx.db.committed, tx.pending...)
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.closed {
		return pgx.ErrTxClosed
	}
	tx.closed = true
	tx.db.rollbacks++
	return nil
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}
