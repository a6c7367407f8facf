package session

import "time"

type StartSessionRequest struct {
	Subject string `json:"subject" binding:"required"`
	Section string `json:"section"`
	BSSID   string `json:"bssid"`
	SSID    string `json:"ssid"`
}

type EndSessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacher"`
	Subject   string    `json:"subject"`
	Section   string    `json:"section,omitempty"`
	PeriodNo  int       `json:"periodNo"`
	BSSID     string    `json:"bssid,omitempty"`
	SSID      string    `json:"ssid,omitempty"`
	OTP       string    `json:"otp"`
	QRToken   string    `json:"qrCode"`
	IsActive  bool      `json:"isActive"`
	StartedAt time.Time `json:"startTime"`
}

type RefreshCodeResponse struct {
	ID      string `json:"id"`
	QRToken string `json:"qrCode"`
}

type ArchiveResponse struct {
	SessionID    string    `json:"sessionId"`
	TeacherID    string    `json:"teacher"`
	Subject      string    `json:"subject"`
	Section      string    `json:"section,omitempty"`
	PeriodNo     int       `json:"periodNo"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	PresentCount int       `json:"presentCount"`
	AbsentCount  int       `json:"absentCount"`
}

type EndSessionResponse struct {
	Message string          `json:"message"`
	History ArchiveResponse `json:"history"`
}

func (s *Session) toDTO() SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		TeacherID: s.TeacherID,
		Subject:   s.Subject,
		Section:   s.Section,
		PeriodNo:  s.PeriodNo,
		BSSID:     s.BSSID,
		SSID:      s.SSID,
		OTP:       s.OTP,
		QRToken:   s.QRToken,
		IsActive:  s.IsActive,
		StartedAt: s.StartedAt,
	}
}

func (a *Archive) toDTO() ArchiveResponse {
	return ArchiveResponse{
		SessionID:    a.SessionID,
		TeacherID:    a.TeacherID,
		Subject:      a.Subject,
		Section:      a.Section,
		PeriodNo:     a.PeriodNo,
		StartTime:    a.StartedAt,
		EndTime:      a.EndedAt,
		PresentCount: a.PresentCount,
		AbsentCount:  a.AbsentCount,
	}
}
