package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	ulid "github.com/oklog/ulid/v2"

	"SAMS-backend/internal/platform/apperr"
	"SAMS-backend/internal/platform/db"
)

// 精算しようとしたセッション行が既に消えていた（他のEnd/Startが先行した）
var errSessionGone = errors.New("session already archived")

// ===== 注入される協調サービス =====

// ScheduleOracle: (教員, 科目, 現在時刻) が時間割のコマ内かを答える
type ScheduleOracle interface {
	ResolvePeriod(ctx context.Context, teacherID, subject string, at time.Time) (periodNo int, ok bool, err error)
}

// Directory: 教員の学科と、学科＋セクションの名簿
type Directory interface {
	TeacherDepartment(ctx context.Context, teacherID string) (string, error)
	StudentRoster(ctx context.Context, department, section string) ([]string, error)
}

// LeaveLookup: 承認済みODが (学生, 日付, コマ) を覆っているか
type LeaveLookup interface {
	Covered(ctx context.Context, studentID string, date time.Time, periodNo int) (bool, error)
}

type Service struct {
	db     *sql.DB
	store  *Store
	oracle ScheduleOracle
	dir    Directory
	leaves LeaveLookup
	now    func() time.Time
}

func NewService(conn *sql.DB, oracle ScheduleOracle, dir Directory, leaves LeaveLookup) *Service {
	return &Service{
		db:     conn,
		store:  NewStore(conn),
		oracle: oracle,
		dir:    dir,
		leaves: leaves,
		now:    time.Now,
	}
}

// Start: 時間割チェックを通してセッションを開始する。
// 同じ教員のセッションが進行中なら、先にそれを精算してアーカイブする
// （旧実装のように黙って捨てると出席データが失われるため）。
func (s *Service) Start(ctx context.Context, teacherID string, in StartSessionRequest) (SessionResponse, error) {
	now := s.now()

	periodNo, ok, err := s.oracle.ResolvePeriod(ctx, teacherID, in.Subject, now)
	if err != nil {
		return SessionResponse{}, err
	}
	if !ok {
		return SessionResponse{}, apperr.ScheduleViolation(fmt.Sprintf(
			"no active class found for %s at %s on %s",
			in.Subject, now.Format("15:04"), now.Weekday()))
	}

	if prior, err := s.store.ActiveByTeacher(ctx, teacherID); err != nil {
		return SessionResponse{}, err
	} else if prior != nil {
		// 並行するEnd/Startが先にアーカイブ済みならそのまま進む。
		// 新規作成の競合はINSERT時のUNIQUEキーが裁く
		if _, err := s.reconcileAndArchive(ctx, prior); err != nil && !errors.Is(err, errSessionGone) {
			return SessionResponse{}, err
		}
	}

	otp, err := generateOTP()
	if err != nil {
		return SessionResponse{}, err
	}
	token, err := generateToken()
	if err != nil {
		return SessionResponse{}, err
	}

	sess := &Session{
		ID:        newSessionID(now),
		TeacherID: teacherID,
		Subject:   in.Subject,
		Section:   in.Section,
		PeriodNo:  periodNo,
		BSSID:     in.BSSID,
		SSID:      in.SSID,
		OTP:       otp,
		QRToken:   token,
		IsActive:  true,
		StartedAt: now.UTC(),
	}
	if err := s.store.Insert(ctx, sess); err != nil {
		// sessions.teacher_id のUNIQUEに当たる＝同時Startの負け側
		if isDuplicateKey(err) {
			return SessionResponse{}, apperr.Conflict("another session is already active for this teacher")
		}
		return SessionResponse{}, err
	}
	return sess.toDTO(), nil
}

// RefreshCode: QRトークンだけを回転させる。OTPと有効フラグは触らない
func (s *Service) RefreshCode(ctx context.Context, teacherID, sessionID string) (RefreshCodeResponse, error) {
	sess, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return RefreshCodeResponse{}, err
	}
	if sess == nil {
		return RefreshCodeResponse{}, apperr.NotFound("session not found")
	}
	if sess.TeacherID != teacherID {
		return RefreshCodeResponse{}, apperr.NotAuthorized("not authorized")
	}

	token, err := generateToken()
	if err != nil {
		return RefreshCodeResponse{}, err
	}
	n, err := s.store.UpdateQRToken(ctx, sessionID, token)
	if err != nil {
		return RefreshCodeResponse{}, err
	}
	if n == 0 {
		return RefreshCodeResponse{}, apperr.SessionInactive("session is not active")
	}
	return RefreshCodeResponse{ID: sessionID, QRToken: token}, nil
}

// Active: 教員の進行中セッション（無ければ nil）
func (s *Service) Active(ctx context.Context, teacherID string) (*SessionResponse, error) {
	sess, err := s.store.ActiveByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	dto := sess.toDTO()
	return &dto, nil
}

// End: 所有教員による終了。欠席精算ののち、アーカイブ化とライブ行削除を
// 1つのTxで行う
func (s *Service) End(ctx context.Context, teacherID, sessionID string) (EndSessionResponse, error) {
	sess, err := s.store.GetByID(ctx, sessionID)
	if err != nil {
		return EndSessionResponse{}, err
	}
	if sess == nil {
		return EndSessionResponse{}, apperr.NotFound("session not found")
	}
	if sess.TeacherID != teacherID {
		return EndSessionResponse{}, apperr.NotAuthorized("not authorized")
	}

	arch, err := s.reconcileAndArchive(ctx, sess)
	if errors.Is(err, errSessionGone) {
		return EndSessionResponse{}, apperr.NotFound("session not found")
	}
	if err != nil {
		return EndSessionResponse{}, err
	}
	return EndSessionResponse{
		Message: "session ended and archived",
		History: arch.toDTO(),
	}, nil
}

// Reports: アーカイブの読み出し側。date指定が無ければ直近10件
func (s *Service) Reports(ctx context.Context, teacherID string, date string) ([]ArchiveResponse, error) {
	var (
		list []Archive
		err  error
	)
	if date == "" {
		list, err = s.store.RecentArchives(ctx, teacherID, 10)
	} else {
		var day time.Time
		day, err = time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return nil, apperr.Invalid("date must be YYYY-MM-DD")
		}
		list, err = s.store.ArchivesOnDate(ctx, teacherID, day)
	}
	if err != nil {
		return nil, err
	}
	out := make([]ArchiveResponse, 0, len(list))
	for i := range list {
		out = append(out, list[i].toDTO())
	}
	return out, nil
}

// reconcileAndArchive: 欠席精算の本体。
//  1. 名簿（教員の学科×セッションのセクション）を取る
//  2. 未出席者ごとにOD適用可否を引く（Txの外・読み取りのみ）
//  3. Tx内で行ロック→差分レコード挿入→集計→アーカイブ挿入→ライブ行削除
func (s *Service) reconcileAndArchive(ctx context.Context, sess *Session) (*Archive, error) {
	dept, err := s.dir.TeacherDepartment(ctx, sess.TeacherID)
	if err != nil {
		return nil, err
	}
	roster, err := s.dir.StudentRoster(ctx, dept, sess.Section)
	if err != nil {
		return nil, err
	}

	presentIDs, err := s.store.PresentStudentIDs(ctx, s.db, sess.ID)
	if err != nil {
		return nil, err
	}
	present := toSet(presentIDs)

	covered := make(map[string]struct{})
	for _, studentID := range roster {
		if _, ok := present[studentID]; ok {
			continue
		}
		ok, err := s.leaves.Covered(ctx, studentID, sess.StartedAt, sess.PeriodNo)
		if err != nil {
			return nil, err
		}
		if ok {
			covered[studentID] = struct{}{}
		}
	}

	endedAt := s.now().UTC()
	var arch *Archive
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		locked, err := s.store.lockSession(ctx, tx, sess.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return errSessionGone
		}

		// 取得からここまでの間にチェックインした学生を拾い直す
		nowPresent, err := s.store.PresentStudentIDs(ctx, tx, locked.ID)
		if err != nil {
			return err
		}
		for _, rec := range buildReconcilePlan(roster, toSet(nowPresent), covered) {
			if err := s.store.insertFinalRecord(ctx, tx, locked.ID, rec.StudentID, rec.Status, rec.Method); err != nil {
				return err
			}
		}

		presentCount, err := s.store.countByStatus(ctx, tx, locked.ID, statusPresent)
		if err != nil {
			return err
		}
		absentCount, err := s.store.countByStatus(ctx, tx, locked.ID, statusAbsent)
		if err != nil {
			return err
		}

		arch = &Archive{
			SessionID:    locked.ID,
			TeacherID:    locked.TeacherID,
			Subject:      locked.Subject,
			Section:      locked.Section,
			PeriodNo:     locked.PeriodNo,
			OTP:          locked.OTP,
			QRToken:      locked.QRToken,
			BSSID:        locked.BSSID,
			SSID:         locked.SSID,
			StartedAt:    locked.StartedAt,
			EndedAt:      endedAt,
			PresentCount: presentCount,
			AbsentCount:  absentCount,
		}
		// アーカイブを先に書いてからライブ行を消す
		if err := s.store.insertArchive(ctx, tx, arch); err != nil {
			return err
		}
		if _, err := s.store.deleteSession(ctx, tx, locked.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arch, nil
}

// ===== 生成系 =====

func newSessionID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// generateOTP: 1000〜9999 の4桁コード
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

// generateToken: QR用の128bitランダムトークン（hex）
func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
