package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelistcl/marketplace-api/internal/model"
)

const setStatusQuery = `SELECT status, published_at, price_clp FROM plans WHERE id = ? FOR UPDATE`

func expectStatusRow(mock sqlmock.Sqlmock, planID uint64, status model.PlanStatus, price int64) {
	mock.ExpectQuery(regexp.QuoteMeta(setStatusQuery)).
		WithArgs(planID).
		WillReturnRows(sqlmock.NewRows([]string{"status", "published_at", "price_clp"}).
			AddRow(string(status), nil, price))
}

// A plan without a positive price must never publish, regardless of
// what intake validation allowed in.
func TestSetStatusRejectsUnpricedPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectStatusRow(mock, 3, model.PlanDraft, 0)
	mock.ExpectRollback()

	_, err = NewPlanRepo(db).SetStatus(context.Background(), 3, model.PlanPublished)
	assert.ErrorIs(t, err, ErrPlanUnpriced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusRejectsTransitionOutsideLifecycle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectStatusRow(mock, 9, model.PlanArchived, 45000)
	mock.ExpectRollback()

	_, err = NewPlanRepo(db).SetStatus(context.Background(), 9, model.PlanPublished)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
