package kvstore

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists values in a shared PostgreSQL table. Several server
// processes may share one database.
type Postgres struct {
	dbc    *pgxpool.Pool
	psq    sq.StatementBuilderType
	txm    trm.Manager
	getter *trmpgx.CtxGetter
}

// NewPostgres connects to dsn, pings, and migrates.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	dbc, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("kvstore: create pool: %w", err)
	}
	if err := dbc.Ping(ctx); err != nil {
		dbc.Close()
		return nil, fmt.Errorf("kvstore: ping postgres: %w", err)
	}
	txm, err := manager.New(trmpgx.NewDefaultFactory(dbc))
	if err != nil {
		dbc.Close()
		return nil, fmt.Errorf("kvstore: create tx manager: %w", err)
	}
	p := &Postgres{
		dbc:    dbc,
		psq:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txm:    txm,
		getter: trmpgx.DefaultCtxGetter,
	}
	if err := p.migrate(ctx); err != nil {
		dbc.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.dbc.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
		`+colName+` TEXT PRIMARY KEY,
		`+colValue+` TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("kvstore: migrate postgres: %w", err)
	}
	return nil
}

// conn returns the transaction carried by ctx, or the pool.
func (p *Postgres) conn(ctx context.Context) trmpgx.Tr {
	return p.getter.DefaultTrOrDB(ctx, p.dbc)
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	query, args, err := p.psq.Select(colValue).From(table).Where(sq.Eq{colName: key}).ToSql()
	if err != nil {
		return "", err
	}
	var v string
	err = p.conn(ctx).QueryRow(ctx, query, args...).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return v, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	query, args, err := p.psq.Insert(table).
		Columns(colName, colValue).
		Values(key, value).
		Suffix(upsertSQL + ", updated_at = now()").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := p.conn(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("kvstore: set %q: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	query, args, err := p.psq.Delete(table).Where(sq.Eq{colName: key}).ToSql()
	if err != nil {
		return err
	}
	if _, err := p.conn(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("kvstore: delete %q: %w", key, err)
	}
	return nil
}

// Update runs fn in a transaction holding an advisory lock on key, so writers
// in other processes wait even when the row does not exist yet.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return p.txm.Do(ctx, func(ctx context.Context) error {
		if _, err := p.conn(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			return fmt.Errorf("kvstore: lock %q: %w", key, err)
		}
		current, err := p.Get(ctx, key)
		found := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}
		return p.Set(ctx, key, next)
	})
}

func (p *Postgres) Close() error {
	p.dbc.Close()
	return nil
}
