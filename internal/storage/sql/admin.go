package sql

import (
	"database/sql"
	"errors"
	"time"

	"aparichit/backend/internal/domain"
	"aparichit/backend/internal/storage"
)

// ========== Admin Repository ==========

// CreateAdmin 创建管理员账户；用户名已存在时返回 ErrAdminExists。
func (s *Store) CreateAdmin(admin *domain.Admin) error {
	if _, err := s.GetAdminByUsername(admin.Username); err == nil {
		return storage.ErrAdminExists
	} else if !errors.Is(err, storage.ErrAdminNotFound) {
		return err
	}

	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	if s.driverName == "postgres" {
		query := s.rebind(`
			INSERT INTO admins (username, pass_hash, created_at)
			VALUES (?, ?, ?)
			RETURNING id
		`)
		return s.db.QueryRow(query, admin.Username, admin.PassHash, admin.CreatedAt).Scan(&admin.ID)
	}

	query := `
		INSERT INTO admins (username, pass_hash, created_at)
		VALUES (?, ?, ?)
	`
	res, err := s.db.Exec(query, admin.Username, admin.PassHash, admin.CreatedAt)
	if err != nil {
		return err
	}
	admin.ID, err = res.LastInsertId()
	return err
}

// GetAdminByUsername 按用户名查找管理员账户。
func (s *Store) GetAdminByUsername(username string) (*domain.Admin, error) {
	query := s.rebind(`
		SELECT id, username, pass_hash, created_at
		FROM admins
		WHERE username = ?
	`)

	var admin domain.Admin
	err := s.db.QueryRow(query, username).Scan(
		&admin.ID, &admin.Username, &admin.PassHash, &admin.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// CountAdmins 返回管理员账户数量。
func (s *Store) CountAdmins() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count)
	return count, err
}
