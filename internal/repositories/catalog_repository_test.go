package repositories

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos_backend/internal/models"
)

func newMockCatalogRepository(t *testing.T) (CatalogRepository, *sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewCatalogRepository(db), db, mock, func() { db.Close() }
}

func TestDecrementStock(t *testing.T) {
	t.Run("tracked item with enough stock", func(t *testing.T) {
		repo, db, mock, closeDB := newMockCatalogRepository(t)
		defer closeDB()

		mock.ExpectExec(`UPDATE menu_items[\s\S]*SET stock_count = stock_count - \$1[\s\S]*WHERE id = \$3 AND stock_count <> \$4 AND stock_count >= \$1`).
			WithArgs(2, sqlmock.AnyArg(), int64(7), models.StockUnlimited).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DecrementStock(db, 7, 2)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stock below requested quantity is an error", func(t *testing.T) {
		repo, db, mock, closeDB := newMockCatalogRepository(t)
		defer closeDB()

		mock.ExpectExec(`UPDATE menu_items[\s\S]*SET stock_count = stock_count - \$1`).
			WithArgs(3, sqlmock.AnyArg(), int64(7), models.StockUnlimited).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DecrementStock(db, 7, 3)

		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
