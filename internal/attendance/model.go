package attendance

import "time"

// Record: 出席レコード。(session, student) ごとに1件だけ。
// 作成後は変更も削除もされない
type Record struct {
	ID        uint64
	SessionID string
	StudentID string
	Status    string // present / absent
	Method    string // wifi / otp / qr / od / manual
	Verified  bool
	DeviceID  string
	MarkedAt  time.Time
}

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"

	MethodWiFi = "wifi"
	MethodOTP  = "otp"
	MethodQR   = "qr"
)

// SessionInfo: チェックイン検証に必要な範囲のセッション情報。
// 担当教員の学科はusersからJOINで引く
type SessionInfo struct {
	ID          string
	TeacherID   string
	TeacherDept string
	Section     string
	BSSID       string
	OTP         string
	QRToken     string
	IsActive    bool
}

// ArchivedInfo: アーカイブ済みセッションの名簿表示に必要な範囲
type ArchivedInfo struct {
	ID          string
	TeacherID   string
	TeacherDept string
	Section     string
}
