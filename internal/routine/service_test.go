package routine

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"period_no", "start", "end"}).
		AddRow(1, "09:00", "09:50").
		AddRow(2, "10:00", "10:50")
	mock.ExpectQuery("FROM routine_periods p").
		WithArgs("t1", "Math", "Monday").
		WillReturnRows(rows)

	svc := NewService(db, nil)
	at := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC) // Monday
	periodNo, ok, err := svc.ResolvePeriod(context.Background(), "t1", "Math", at)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, periodNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolvePeriodOutsideSlots(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"period_no", "start", "end"}).
		AddRow(1, "09:00", "09:50")
	mock.ExpectQuery("FROM routine_periods p").
		WillReturnRows(rows)

	svc := NewService(db, nil)
	// 終了時刻ちょうどはコマ外
	at := time.Date(2026, 3, 2, 9, 50, 0, 0, time.UTC)
	_, ok, err := svc.ResolvePeriod(context.Background(), "t1", "Math", at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePeriodNoTimetable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM routine_periods p").
		WillReturnRows(sqlmock.NewRows([]string{"period_no", "start", "end"}))

	svc := NewService(db, nil)
	_, ok, err := svc.ResolvePeriod(context.Background(), "t1", "Math", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}
