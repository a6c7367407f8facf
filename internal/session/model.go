package session

import "time"

// Session: 進行中のクラスセッション。1教員につき同時に1つだけ。
// 終了時に Archive へ変換され、この行は削除される（フラグ落としではない）。
type Session struct {
	ID        string
	TeacherID string
	Subject   string
	Section   string
	PeriodNo  int
	BSSID     string
	SSID      string
	OTP       string // 4桁の数字コード
	QRToken   string // QR用のローテーショントークン（hex 32文字）
	IsActive  bool
	StartedAt time.Time
}

// Archive: 精算済みセッションの不変レコード。
// attendance_records の外部参照を生かすため、IDはセッションのものを引き継ぐ。
type Archive struct {
	SessionID    string
	TeacherID    string
	Subject      string
	Section      string
	PeriodNo     int
	OTP          string
	QRToken      string
	BSSID        string
	SSID         string
	StartedAt    time.Time
	EndedAt      time.Time
	PresentCount int
	AbsentCount  int
}

const (
	statusPresent = "present"
	statusAbsent  = "absent"

	// 精算時に作られるレコードのmethod
	methodOD     = "od"
	methodManual = "manual"
)
