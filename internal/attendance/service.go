package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mysql "github.com/go-sql-driver/mysql"

	"SAMS-backend/internal/directory"
	"SAMS-backend/internal/platform/apperr"
)

type Directory interface {
	Student(ctx context.Context, id string) (*directory.User, error)
	Students(ctx context.Context, department, section string) ([]*directory.User, error)
}

type Service struct {
	db    *sql.DB
	store *Store
	dir   Directory
	now   func() time.Time
}

func NewService(conn *sql.DB, dir Directory) *Service {
	return &Service{db: conn, store: NewStore(conn), dir: dir, now: time.Now}
}

// VerifyWifi: チェックイン前のネットワーク近接チェック。
// レコードは作らない（markの前段のゲートのみ）
func (s *Service) VerifyWifi(ctx context.Context, studentID string, in VerifyWifiRequest) (VerifyWifiResponse, error) {
	info, err := s.activeSession(ctx, in.SessionID)
	if err != nil {
		return VerifyWifiResponse{}, err
	}

	marked, err := s.store.Exists(ctx, info.ID, studentID)
	if err != nil {
		return VerifyWifiResponse{}, err
	}
	if marked {
		return VerifyWifiResponse{}, apperr.AlreadyMarked("attendance already marked")
	}

	if err := checkNetwork(info.BSSID, in.BSSID); err != nil {
		return VerifyWifiResponse{}, err
	}
	return VerifyWifiResponse{Message: "WiFi verified", SessionID: info.ID}, nil
}

// Mark: 学生のチェックイン。ゲートの順は
// セッション有効 → 重複 → 学科/セクション → コード照合
func (s *Service) Mark(ctx context.Context, studentID string, in MarkRequest) (RecordResponse, error) {
	info, err := s.activeSession(ctx, in.SessionID)
	if err != nil {
		return RecordResponse{}, err
	}

	marked, err := s.store.Exists(ctx, info.ID, studentID)
	if err != nil {
		return RecordResponse{}, err
	}
	if marked {
		return RecordResponse{}, apperr.AlreadyMarked("attendance already marked")
	}

	stu, err := s.dir.Student(ctx, studentID)
	if err != nil {
		return RecordResponse{}, err
	}
	if stu.Student.Department != info.TeacherDept {
		return RecordResponse{}, apperr.Forbidden(fmt.Sprintf(
			"you belong to %s, this class is for %s", stu.Student.Department, info.TeacherDept))
	}
	if info.Section != "" && stu.Student.Section != info.Section {
		return RecordResponse{}, apperr.Forbidden(fmt.Sprintf(
			"you are in section %s, this class is for section %s", stu.Student.Section, info.Section))
	}

	if err := verifyCode(info, in.Method, in.Code, in.BSSID); err != nil {
		return RecordResponse{}, err
	}

	rec := &Record{
		SessionID: info.ID,
		StudentID: studentID,
		Status:    StatusPresent,
		Method:    in.Method,
		Verified:  true,
		DeviceID:  stu.Student.DeviceID,
		MarkedAt:  s.now().UTC(),
	}
	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		// 事前チェックとのすき間で同時チェックインされた場合はここで落ちる。
		// 一意性の本丸はDBのUNIQUEキー
		if isDuplicateKey(err) {
			return RecordResponse{}, apperr.AlreadyMarked("attendance already marked")
		}
		return RecordResponse{}, err
	}
	rec.ID = id
	return rec.toDTO(), nil
}

// LiveRoster: 名簿とレコードをマージした一覧。
// ライブ・アーカイブのどちらのセッションでも引ける
func (s *Service) LiveRoster(ctx context.Context, teacherID, sessionID string) ([]RosterEntry, error) {
	var ownerID, dept, section string
	if info, err := s.store.SessionInfo(ctx, sessionID); err != nil {
		return nil, err
	} else if info != nil {
		ownerID, dept, section = info.TeacherID, info.TeacherDept, info.Section
	} else {
		arch, err := s.store.ArchivedInfo(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if arch == nil {
			return nil, apperr.NotFound("session not found")
		}
		ownerID, dept, section = arch.TeacherID, arch.TeacherDept, arch.Section
	}
	if ownerID != teacherID {
		return nil, apperr.NotAuthorized("not authorized")
	}

	students, err := s.dir.Students(ctx, dept, section)
	if err != nil {
		return nil, err
	}
	records, err := s.store.BySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[string]Record, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	out := make([]RosterEntry, 0, len(students))
	for _, stu := range students {
		entry := RosterEntry{
			Student: RosterStudent{ID: stu.ID, Name: stu.Name, RollNumber: stu.Student.RollNumber},
			Status:  StatusAbsent,
		}
		if r, ok := byStudent[stu.ID]; ok {
			entry.Status = r.Status
			entry.Method = r.Method
			markedAt := r.MarkedAt
			entry.MarkedAt = &markedAt
		}
		out = append(out, entry)
	}
	return out, nil
}

// activeSession: ライブなセッションだけを通す。
// アーカイブ済みも存在しないものも、学生にはinactiveとして見せる
func (s *Service) activeSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	info, err := s.store.SessionInfo(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		archived, err := s.store.ArchivedInfo(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if archived != nil {
			return nil, apperr.SessionInactive("session is not active")
		}
		return nil, apperr.NotFound("session not found")
	}
	if !info.IsActive {
		return nil, apperr.SessionInactive("session is not active")
	}
	return info, nil
}

// verifyCode: method別のコード照合
func verifyCode(info *SessionInfo, method, code, claimedBSSID string) error {
	switch method {
	case MethodWiFi:
		return checkNetwork(info.BSSID, claimedBSSID)
	case MethodOTP:
		if code != info.OTP {
			return apperr.InvalidCode("invalid OTP")
		}
	case MethodQR:
		if code != info.QRToken {
			return apperr.InvalidCode("invalid QR code")
		}
	default:
		return apperr.Invalid("invalid method")
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
