package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apetrovs/databoard/internal/common"
	"github.com/apetrovs/databoard/internal/dbx"
)

// uniqueViolation is the SQLSTATE the database reports when the unique
// index on users.email rejects an insert. The pre-insert uniqueness
// check is only an optimization; this constraint is the authoritative
// guard, and both paths surface the same error.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

// Create inserts the user and its addresses in one transaction. A
// duplicate e-mail yields common.ErrEmailTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		query :=
			`INSERT INTO users (name, email, password_hash, birth_date)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at
			 `

		err := tx.QueryRowContext(ctx, query,
			user.Name, user.Email, user.PasswordHash, user.BirthDate).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			return err
		}

		for i := range user.Addresses {
			a := &user.Addresses[i]
			a.UserID = user.ID

			query :=
				`INSERT INTO addresses (user_id, cep, street, street_number, complement, neighborhood, city, state)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 RETURNING id
				 `

			err := tx.QueryRowContext(ctx, query,
				a.UserID, a.CEP, a.Street, a.StreetNumber, a.Complement, a.Neighborhood, a.City, a.State).Scan(&a.ID)
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query :=
		`SELECT id, name, email, password_hash, birth_date, created_at FROM users
		 WHERE email = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.BirthDate, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query :=
		`SELECT id, name, email, password_hash, birth_date, created_at FROM users
		 WHERE id = $1
		 `

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.BirthDate, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	addresses, err := r.addressesByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Addresses = addresses

	return user, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

// List returns one page of users ordered by name ascending and the total
// user count. An offset past the end yields an empty page.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]User, int, error) {
	query :=
		`SELECT id, name, email, password_hash, birth_date, created_at FROM users
		 ORDER BY name ASC, id ASC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.BirthDate, &u.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return result, total, nil
}

func (r *PostgresRepository) addressesByUserID(ctx context.Context, userID int64) ([]Address, error) {
	query :=
		`SELECT id, user_id, cep, street, street_number, complement, neighborhood, city, state FROM addresses
		 WHERE user_id = $1
		 ORDER BY id ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.CEP, &a.Street, &a.StreetNumber, &a.Complement, &a.Neighborhood, &a.City, &a.State); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
