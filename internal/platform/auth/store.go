package auth

import (
	"context"
	"database/sql"
	"errors"
)

// Account: 認証に必要な範囲のユーザー情報
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Department   string
	Section      string
	RollNumber   string
	// 学生の端末バインド。未バインドなら空
	DeviceID string
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	BindDevice(ctx context.Context, userID, deviceID string) error
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore { return &Store{db: db} }

const accountCols = `user_id, name, email, password_hash, role,
	COALESCE(department, ''), COALESCE(section, ''), COALESCE(roll_number, ''), COALESCE(device_id, '')`

func (s *Store) scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
		&a.Department, &a.Section, &a.RollNumber, &a.DeviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `SELECT ` + accountCols + ` FROM users WHERE email = ? LIMIT 1`
	return s.scanAccount(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	const q = `SELECT ` + accountCols + ` FROM users WHERE user_id = ? LIMIT 1`
	return s.scanAccount(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
	INSERT INTO users (user_id, name, email, password_hash, role, department, section, roll_number, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, UTC_TIMESTAMP())`

	dept := any(nil)
	if a.Department != "" {
		dept = a.Department
	}
	section := any(nil)
	if a.Section != "" {
		section = a.Section
	}
	roll := any(nil)
	if a.RollNumber != "" {
		roll = a.RollNumber
	}
	_, err := s.db.ExecContext(ctx, q, a.ID, a.Name, a.Email, a.PasswordHash, a.Role, dept, section, roll)
	return err
}

func (s *Store) BindDevice(ctx context.Context, userID, deviceID string) error {
	// 初回バインドのみ。既に入っている値は上書きしない
	const q = `UPDATE users SET device_id = ? WHERE user_id = ? AND device_id IS NULL`
	_, err := s.db.ExecContext(ctx, q, deviceID, userID)
	return err
}
