package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WriteTx performs profile, artifact and rating writes inside one
// transaction opened by WithWriteTx.
type WriteTx struct {
	tx pgx.Tx
}

func (w WriteTx) UpsertProfile(ctx context.Context, p model.Profile) error {
	return upsertProfile(ctx, w.tx, p)
}

func (w WriteTx) InsertArtifact(ctx context.Context, a model.Artifact) (model.Artifact, error) {
	return insertArtifact(ctx, w.tx, a)
}

func (w WriteTx) UpsertRating(ctx context.Context, r model.Rating) error {
	return upsertRating(ctx, w.tx, r)
}

// WithWriteTx commits every write fn makes, or none of them when fn fails.
func WithWriteTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, WriteTx) error) error {
	return WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, WriteTx{tx: tx})
	})
}

func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	return withTxOptions(ctx, pool, pgx.TxOptions{}, fn)
}

// WithReadTx runs fn in a read-only repeatable-read transaction so that
// several reads see one snapshot.
func WithReadTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	return withTxOptions(ctx, pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, fn)
}

func withTxOptions(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return classify("begin tx", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify("commit tx", err)
	}

	return nil
}
