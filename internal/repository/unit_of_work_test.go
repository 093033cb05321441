package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"trade-market/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWorkCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	category := &domain.Category{ID: uuid.New(), Name: "Bakery", CreatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs(category.ID, category.Name, category.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	uow := NewUnitOfWork(db)
	err = uow.Save(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.Categories().Create(ctx, category)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	receiptID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM receipt_details WHERE receipt_id").
		WithArgs(receiptID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM receipts WHERE id").
		WithArgs(receiptID).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	uow := NewUnitOfWork(db)
	err = uow.Save(context.Background(), func(ctx context.Context, repos Repositories) error {
		if _, err := repos.ReceiptDetails().DeleteByReceiptID(ctx, receiptID); err != nil {
			return err
		}
		return repos.Receipts().Delete(ctx, receiptID)
	})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	uow := NewUnitOfWork(db)
	assert.Panics(t, func() {
		_ = uow.Save(context.Background(), func(ctx context.Context, repos Repositories) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWorkReportsBeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = NewUnitOfWork(db).Save(context.Background(), func(ctx context.Context, repos Repositories) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestConstraintViolationsMapToDomainErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	categories := NewCategoryRepository(db)
	id := uuid.New()

	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	err = categories.Create(context.Background(), &domain.Category{ID: id, Name: "Dairy"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	assert.ErrorIs(t, categories.Delete(context.Background(), id), ErrCategoryInUse)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, categories.Delete(context.Background(), id), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
