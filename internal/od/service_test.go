package od

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SAMS-backend/internal/directory"
	"SAMS-backend/internal/platform/apperr"
)

type fakeDir struct{ users map[string]*directory.User }

func (f fakeDir) Student(ctx context.Context, id string) (*directory.User, error) {
	return f.users[id], nil
}

func (f fakeDir) UserByID(ctx context.Context, id string) (*directory.User, error) {
	return f.users[id], nil
}

func advisorDir() fakeDir {
	return fakeDir{users: map[string]*directory.User{
		"adv1": {
			ID:   "adv1",
			Role: directory.RoleTeacher,
			Teacher: &directory.TeacherProfile{
				Department:  "CSE",
				IsAdvisor:   true,
				AdvisorDept: "CSE",
			},
		},
		"t2": {
			ID:      "t2",
			Role:    directory.RoleTeacher,
			Teacher: &directory.TeacherProfile{Department: "CSE"},
		},
	}}
}

func TestApplyValidation(t *testing.T) {
	svc := NewService(nil, fakeDir{})

	tests := []struct {
		name string
		req  ApplyRequest
	}{
		{name: "bad from date", req: ApplyRequest{FromDate: "01-03-2026", ToDate: "2026-03-02", Reason: "x"}},
		{name: "bad to date", req: ApplyRequest{FromDate: "2026-03-01", ToDate: "tomorrow", Reason: "x"}},
		{name: "reversed range", req: ApplyRequest{FromDate: "2026-03-05", ToDate: "2026-03-01", Reason: "x"}},
		{name: "period without periods", req: ApplyRequest{FromDate: "2026-03-01", ToDate: "2026-03-01", Reason: "x", ODType: "Period"}},
		{name: "period out of range", req: ApplyRequest{FromDate: "2026-03-01", ToDate: "2026-03-01", Reason: "x", ODType: "Period", Periods: []int{7}}},
		{name: "unknown type", req: ApplyRequest{FromDate: "2026-03-01", ToDate: "2026-03-01", Reason: "x", ODType: "HalfDay"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), "s1", tt.req)
			require.Error(t, err)
			assert.Equal(t, apperr.CodeInvalidArgument, apperr.FromErr(err).Code)
		})
	}
}

func TestApplyPeriodType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO od_requests").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO od_request_periods").
		WithArgs(uint64(42), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO od_request_periods").
		WithArgs(uint64(42), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dir := fakeDir{users: map[string]*directory.User{
		"s1": {
			ID:   "s1",
			Name: "Asha",
			Role: directory.RoleStudent,
			Student: &directory.StudentProfile{
				RollNumber: "21CS001",
				Department: "CSE",
				Batch:      "2023",
			},
		},
	}}

	svc := NewService(db, dir)
	res, err := svc.Apply(context.Background(), "s1", ApplyRequest{
		FromDate: "2026-03-01",
		ToDate:   "2026-03-01",
		Reason:   "hackathon",
		ODType:   "Period",
		Periods:  []int{2, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(42), res.ID)
	assert.Equal(t, string(StatusPending), res.Status)
	assert.Equal(t, []int{2, 3}, res.Periods)
	assert.Equal(t, "Asha", res.StudentName)
	assert.Equal(t, "CSE", res.Dept)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// FullDay はコマ指定を黙って捨てる
func TestApplyFullDayDropsPeriods(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO od_requests").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	dir := fakeDir{users: map[string]*directory.User{
		"s1": {
			ID:      "s1",
			Role:    directory.RoleStudent,
			Student: &directory.StudentProfile{Department: "CSE"},
		},
	}}

	svc := NewService(db, dir)
	res, err := svc.Apply(context.Background(), "s1", ApplyRequest{
		FromDate: "2026-03-01",
		ToDate:   "2026-03-02",
		Reason:   "sports meet",
		Periods:  []int{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, string(TypeFullDay), res.ODType)
	assert.Empty(t, res.Periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRequiresAdvisor(t *testing.T) {
	svc := NewService(nil, advisorDir())
	err := svc.UpdateStatus(context.Background(), "t2", 1, UpdateStatusRequest{Status: "Approved"})
	require.Error(t, err)
	api := apperr.FromErr(err)
	assert.Equal(t, apperr.CodeForbidden, api.Code)
	assert.Equal(t, "not an advisor", api.Message)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewService(nil, advisorDir())
	err := svc.UpdateStatus(context.Background(), "adv1", 1, UpdateStatusRequest{Status: "Maybe"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.FromErr(err).Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE od_requests SET status").
		WithArgs("Approved", "adv1", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc := NewService(db, advisorDir())
	err = svc.UpdateStatus(context.Background(), "adv1", 1, UpdateStatusRequest{Status: "Approved"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.FromErr(err).Code)
}

func TestCovered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM od_requests r").
		WithArgs("s1", "2026-03-02", "2026-03-02", 3).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM od_requests r").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := NewService(db, fakeDir{})
	date := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	ok, err := svc.Covered(context.Background(), "s1", date, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Covered(context.Background(), "s2", date, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParsePeriodList(t *testing.T) {
	assert.Nil(t, parsePeriodList(""))
	assert.Equal(t, []int{1, 4, 6}, parsePeriodList("1,4,6"))
}
