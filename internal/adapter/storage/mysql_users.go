package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rl1809/inventory/internal/core/domain"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func encodePermissions(permissions []string) (string, error) {
	if permissions == nil {
		permissions = []string{}
	}
	raw, err := json.Marshal(permissions)
	if err != nil {
		return "", fmt.Errorf("encode permissions: %w", err)
	}
	return string(raw), nil
}

func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	permissions, err := encodePermissions(user.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_digest, role, permissions, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordDigest, user.Role, permissions,
		user.IsActive, user.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_digest, role, permissions, is_active, created_at
		FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	var permissions string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordDigest, &u.Role, &permissions, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(permissions), &u.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	return &u, nil
}

func (r *MySQLUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, password_digest, role, permissions, is_active, created_at
		FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *MySQLUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role, permissions []string) error {
	encoded, err := encodePermissions(permissions)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, permissions = ? WHERE id = ?`, role, encoded, id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("query user: %w", err)
		}
	}
	return nil
}
