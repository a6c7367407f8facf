package attendance

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SAMS-backend/internal/directory"
	"SAMS-backend/internal/platform/apperr"
)

func TestVerifyCode(t *testing.T) {
	info := &SessionInfo{BSSID: "192.168.1.1", OTP: "4321", QRToken: "deadbeefdeadbeefdeadbeefdeadbeef"}

	tests := []struct {
		name     string
		method   string
		code     string
		bssid    string
		wantCode apperr.Code
	}{
		{name: "wifi ok", method: MethodWiFi, bssid: "192.168.1.200"},
		{name: "wifi wrong subnet", method: MethodWiFi, bssid: "192.168.9.200", wantCode: apperr.CodeNetworkMismatch},
		{name: "otp ok", method: MethodOTP, code: "4321"},
		{name: "otp wrong", method: MethodOTP, code: "1111", wantCode: apperr.CodeInvalidCode},
		{name: "qr ok", method: MethodQR, code: "deadbeefdeadbeefdeadbeefdeadbeef"},
		{name: "qr wrong", method: MethodQR, code: "stale-token", wantCode: apperr.CodeInvalidCode},
		{name: "unknown method", method: "carrier-pigeon", wantCode: apperr.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyCode(info, tt.method, tt.code, tt.bssid)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.FromErr(err).Code)
		})
	}
}

type fakeDir struct{ students map[string]*directory.User }

func (f fakeDir) Student(ctx context.Context, id string) (*directory.User, error) {
	return f.students[id], nil
}

func (f fakeDir) Students(ctx context.Context, department, section string) ([]*directory.User, error) {
	var out []*directory.User
	for _, u := range f.students {
		out = append(out, u)
	}
	return out, nil
}

func sessionInfoRow(bssid string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"session_id", "teacher_id", "department", "section", "bssid", "otp", "qr_token", "is_active",
	}).AddRow("sess1", "t1", "CSE", "A", bssid, "4321", "deadbeef", active)
}

func TestVerifyWifiOK(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionInfoRow(WildcardNetwork, true))
	mock.ExpectQuery("SELECT 1 FROM attendance_records").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	svc := NewService(db, fakeDir{})
	res, err := svc.VerifyWifi(context.Background(), "s1", VerifyWifiRequest{SessionID: "sess1", BSSID: "10.1.2.3"})
	require.NoError(t, err)
	assert.Equal(t, "sess1", res.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyWifiAlreadyMarked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionInfoRow(WildcardNetwork, true))
	mock.ExpectQuery("SELECT 1 FROM attendance_records").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	svc := NewService(db, fakeDir{})
	_, err = svc.VerifyWifi(context.Background(), "s1", VerifyWifiRequest{SessionID: "sess1", BSSID: "10.1.2.3"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAlreadyMarked, apperr.FromErr(err).Code)
}

// 終了済みセッションはライブ側に行が無く、アーカイブ側から inactive として返す
func TestVerifyWifiArchivedSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))
	mock.ExpectQuery("FROM class_histories h").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "teacher_id", "department", "section"}).
			AddRow("sess1", "t1", "CSE", "A"))

	svc := NewService(db, fakeDir{})
	_, err = svc.VerifyWifi(context.Background(), "s1", VerifyWifiRequest{SessionID: "sess1", BSSID: "10.1.2.3"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeSessionInactive, apperr.FromErr(err).Code)
}

func TestVerifyWifiUnknownSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))
	mock.ExpectQuery("FROM class_histories h").
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))

	svc := NewService(db, fakeDir{})
	_, err = svc.VerifyWifi(context.Background(), "s1", VerifyWifiRequest{SessionID: "nope", BSSID: "10.1.2.3"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.FromErr(err).Code)
}

func TestMarkRejectsOtherDepartment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionInfoRow(WildcardNetwork, true))
	mock.ExpectQuery("SELECT 1 FROM attendance_records").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	dir := fakeDir{students: map[string]*directory.User{
		"s1": {
			ID:   "s1",
			Role: directory.RoleStudent,
			Student: &directory.StudentProfile{
				Department: "ECE",
				Section:    "A",
			},
		},
	}}

	svc := NewService(db, dir)
	_, err = svc.Mark(context.Background(), "s1", MarkRequest{SessionID: "sess1", Method: MethodOTP, Code: "4321"})
	require.Error(t, err)
	api := apperr.FromErr(err)
	assert.Equal(t, apperr.CodeForbidden, api.Code)
	assert.Equal(t, "you belong to ECE, this class is for CSE", api.Message)
}

// 事前チェックを両者が通った後の同時チェックイン。
// 負け側はUNIQUEキー違反(1062)を踏み、ALREADY_MARKEDとして返る
func TestMarkLosesCheckInRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionInfoRow(WildcardNetwork, true))
	mock.ExpectQuery("SELECT 1 FROM attendance_records").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	dir := fakeDir{students: map[string]*directory.User{
		"s1": {
			ID:      "s1",
			Role:    directory.RoleStudent,
			Student: &directory.StudentProfile{Department: "CSE", Section: "A"},
		},
	}}

	svc := NewService(db, dir)
	_, err = svc.Mark(context.Background(), "s1", MarkRequest{SessionID: "sess1", Method: MethodOTP, Code: "4321"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAlreadyMarked, apperr.FromErr(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkByOTP(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM sessions s").
		WillReturnRows(sessionInfoRow(WildcardNetwork, true))
	mock.ExpectQuery("SELECT 1 FROM attendance_records").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnResult(sqlmock.NewResult(7, 1))

	dir := fakeDir{students: map[string]*directory.User{
		"s1": {
			ID:   "s1",
			Role: directory.RoleStudent,
			Student: &directory.StudentProfile{
				Department: "CSE",
				Section:    "A",
				DeviceID:   "device-x",
			},
		},
	}}

	svc := NewService(db, dir)
	res, err := svc.Mark(context.Background(), "s1", MarkRequest{SessionID: "sess1", Method: MethodOTP, Code: "4321"})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.ID)
	assert.Equal(t, StatusPresent, res.Status)
	assert.Equal(t, MethodOTP, res.Method)
	assert.True(t, res.Verified)
	assert.NoError(t, mock.ExpectationsWereMet())
}
