package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type sqlUnitOfWork struct {
	*repositories
	db *sql.DB
}

// NewUnitOfWork creates a Postgres-backed UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &sqlUnitOfWork{
		repositories: newRepositories(db),
		db:           db,
	}
}

// Save runs fn inside a READ COMMITTED transaction and commits on success
func (u *sqlUnitOfWork) Save(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) (err error) {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
