package attendance

import "time"

type VerifyWifiRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	BSSID     string `json:"bssid" binding:"required"`
}

type VerifyWifiResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type MarkRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Code      string `json:"code"`
	Method    string `json:"method" binding:"required"` // wifi / otp / qr
	BSSID     string `json:"bssid"`                     // method=wifi のとき
}

type RecordResponse struct {
	ID        uint64    `json:"id"`
	SessionID string    `json:"session"`
	StudentID string    `json:"student"`
	Status    string    `json:"status"`
	Method    string    `json:"method"`
	Verified  bool      `json:"verified"`
	DeviceID  string    `json:"deviceId,omitempty"`
	MarkedAt  time.Time `json:"timestamp"`
}

// RosterEntry: 名簿と出席レコードをマージした1行。
// レコードが無い学生は absent として返す
type RosterEntry struct {
	Student  RosterStudent `json:"student"`
	Status   string        `json:"status"`
	Method   string        `json:"method,omitempty"`
	MarkedAt *time.Time    `json:"markedAt,omitempty"`
}

type RosterStudent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

func (r Record) toDTO() RecordResponse {
	return RecordResponse{
		ID:        r.ID,
		SessionID: r.SessionID,
		StudentID: r.StudentID,
		Status:    r.Status,
		Method:    r.Method,
		Verified:  r.Verified,
		DeviceID:  r.DeviceID,
		MarkedAt:  r.MarkedAt,
	}
}
