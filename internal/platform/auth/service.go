package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	ulid "github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrBadCredentials = errors.New("authentication failed")
	// 学生が登録済み端末以外からログインした
	ErrDeviceMismatch = errors.New("device not recognized")
)

type Service struct {
	store  AccountStore
	secret []byte
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{store: NewStore(db), secret: secret}
}

type LoginResult struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Section    string `json:"section,omitempty"`
	RollNumber string `json:"rollNumber,omitempty"`
	DeviceID   string `json:"deviceId,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Login: email+パスワード認証。学生は端末バインドも行う:
// 未バインドなら今回の端末を登録し、別端末なら拒否する
func (s *Service) Login(ctx context.Context, email, password, deviceID string) (LoginResult, error) {
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if acct == nil {
		return LoginResult{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrBadCredentials
	}

	if acct.Role == "student" && deviceID != "" {
		switch {
		case acct.DeviceID == "":
			if err := s.store.BindDevice(ctx, acct.ID, deviceID); err != nil {
				return LoginResult{}, err
			}
			acct.DeviceID = deviceID
		case acct.DeviceID != deviceID:
			return LoginResult{}, ErrDeviceMismatch
		}
	}

	token, err := s.issueToken(acct)
	if err != nil {
		return LoginResult{}, err
	}
	return toResult(acct, token), nil
}

type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	Section    string
	RollNumber string
}

// Register: bcryptでハッシュ化して新規ユーザーを作る
func (s *Service) Register(ctx context.Context, in RegisterInput) (LoginResult, error) {
	if in.Role != "student" && in.Role != "teacher" {
		return LoginResult{}, errors.New("role must be student or teacher")
	}
	exists, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		return LoginResult{}, err
	}
	if exists != nil {
		return LoginResult{}, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return LoginResult{}, err
	}

	acct := &Account{
		ID:           newUserID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   in.Department,
		Section:      in.Section,
		RollNumber:   in.RollNumber,
	}
	if err := s.store.Create(ctx, acct); err != nil {
		return LoginResult{}, err
	}

	token, err := s.issueToken(acct)
	if err != nil {
		return LoginResult{}, err
	}
	return toResult(acct, token), nil
}

// Verify: トークン検証後のプロファイル返却（middlewareが通した前提）
func (s *Service) Verify(ctx context.Context, userID string) (LoginResult, error) {
	acct, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	if acct == nil {
		return LoginResult{}, ErrNotFound
	}
	return toResult(acct, ""), nil
}

func (s *Service) issueToken(acct *Account) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}

func toResult(acct *Account, token string) LoginResult {
	return LoginResult{
		ID:         acct.ID,
		Name:       acct.Name,
		Email:      acct.Email,
		Role:       acct.Role,
		Department: acct.Department,
		Section:    acct.Section,
		RollNumber: acct.RollNumber,
		DeviceID:   acct.DeviceID,
		Token:      token,
	}
}

func newUserID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
