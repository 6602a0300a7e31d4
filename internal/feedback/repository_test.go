package feedback

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackCols = []string{
	"id", "customer_name", "customer_phone_number", "content",
	"product_id", "product_name", "created_at",
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		f := &Feedback{
			ID:          uuid.New(),
			Content:     "Cam rất ngọt",
			ProductID:   uuid.New(),
			ProductName: "Cam sành",
		}

		mock.ExpectQuery("INSERT INTO feedbacks").
			WithArgs(f.ID, f.CustomerName, f.CustomerPhoneNumber, f.Content, f.ProductID, f.ProductName).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		err := repo.Create(context.Background(), f)
		assert.NoError(t, err)
		assert.False(t, f.CreatedAt.IsZero())
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	feedbackID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT .* FROM feedbacks").
			WithArgs(feedbackID).
			WillReturnRows(sqlmock.NewRows(feedbackCols).
				AddRow(feedbackID.String(), "A", "0901234567", "Ngon", uuid.New().String(), "Cam sành", time.Now()))

		f, err := repo.GetByID(context.Background(), feedbackID)
		require.NoError(t, err)
		assert.Equal(t, feedbackID, f.ID)
		assert.Equal(t, "Cam sành", f.ProductName)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT .* FROM feedbacks").
			WithArgs(feedbackID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), feedbackID)
		assert.ErrorIs(t, err, ErrFeedbackNotFound)
	})
}

func TestRepository_SearchByProductName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Filtered", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM feedbacks WHERE product_name ILIKE \\$1").
			WithArgs("%cam%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("(?s)SELECT .* FROM feedbacks WHERE product_name ILIKE \\$1").
			WithArgs("%cam%", int32(10), int32(0)).
			WillReturnRows(sqlmock.NewRows(feedbackCols).
				AddRow(uuid.New().String(), "A", "", "Ngon", uuid.New().String(), "Cam sành", time.Now()))

		feedbacks, total, err := repo.SearchByProductName(context.Background(), "cam", 10, 1)
		require.NoError(t, err)
		assert.Len(t, feedbacks, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("Unfiltered", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM feedbacks").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("(?s)SELECT .* FROM feedbacks").
			WithArgs(int32(10), int32(0)).
			WillReturnRows(sqlmock.NewRows(feedbackCols))

		feedbacks, total, err := repo.SearchByProductName(context.Background(), "", 10, 1)
		require.NoError(t, err)
		assert.Empty(t, feedbacks)
		assert.Equal(t, int64(0), total)
	})
}

func TestRepository_DeleteByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM feedbacks").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteByIDs(context.Background(), []uuid.UUID{uuid.New()}))
	})

	t.Run("EmptyInput", func(t *testing.T) {
		assert.NoError(t, repo.DeleteByIDs(context.Background(), nil))
	})
}
