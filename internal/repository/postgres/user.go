package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridebook/internal/domain"
	"ridebook/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// NewUserRepositoryWithTx creates a user repository using a transaction.
func NewUserRepositoryWithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{q: tx}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, address, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		nullString(user.Phone),
		nullString(user.Address),
		user.Role,
		user.CreatedAt,
	)

	return translateError(err)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, role, created_at
		FROM users WHERE id = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, address, role, created_at
		FROM users WHERE email = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, email))
}

// GetAll retrieves users with paging.
func (r *UserRepository) GetAll(ctx context.Context, limit, offset int) ([]*domain.User, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, email, phone, address, role, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.q.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var phone, address sql.NullString
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&phone,
			&address,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		user.Phone = phone.String
		user.Address = address.String
		users = append(users, &user)
	}

	return users, total, rows.Err()
}

// UpdateRole changes a user's authorization role.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	query := `UPDATE users SET role = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateContact sets the user's phone and address.
func (r *UserRepository) UpdateContact(ctx context.Context, id, phone, address string) error {
	query := `UPDATE users SET phone = $1, address = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, nullString(phone), nullString(address), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var phone, address sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&phone,
		&address,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	user.Phone = phone.String
	user.Address = address.String
	return &user, nil
}
