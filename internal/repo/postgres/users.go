package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// ExistsByEmailOrPhone is the advisory pre-insert check. The unique
// constraints remain the authoritative guard; Create still has to handle the
// race where a matching row lands between this check and the insert.
func (r *UsersRepo) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (exists bool, err error) {
	err = r.observe("users.exists", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR phone = $2)`,
			email,
			phone,
		).Scan(&exists)
	})

	return exists, err
}

func (r *UsersRepo) Create(ctx context.Context, name, email, phone, passwordHash string) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (name, email, phone, hashed_password)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, name, email, phone, hashed_password, role, created_at, updated_at`,
			name,
			email,
			phone,
			passwordHash,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Phone,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrDuplicate
		}

		return user.User{}, err
	}

	return u, nil
}

// GetByEmail returns the full row, credential included, for verification.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, phone, hashed_password, role, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Phone,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// GetByID projects out the credential field.
func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, email, phone, role, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.Phone,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// List projects out the credential field for every account.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, name, email, phone, role, created_at, updated_at
			 FROM users
			 ORDER BY id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// UpdateProfile overwrites name/email/phone for the id and refreshes
// updated_at. Returns the affected-row count; zero rows is not an error.
func (r *UsersRepo) UpdateProfile(ctx context.Context, id int64, name, email, phone string) (int64, error) {
	var affected int64

	err := r.observe("users.update_profile", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`UPDATE users
			 SET name = $2, email = $3, phone = $4, updated_at = NOW()
			 WHERE id = $1`,
			id,
			name,
			email,
			phone,
		)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}

// UpdatePasswordByEmail overwrites the stored credential and refreshes
// updated_at.
func (r *UsersRepo) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error) {
	var affected int64

	err := r.observe("users.update_password", func() error {
		tag, err := r.pool.Exec(
			ctx,
			`UPDATE users
			 SET hashed_password = $2, updated_at = NOW()
			 WHERE email = $1`,
			email,
			passwordHash,
		)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}

func (r *UsersRepo) DeleteByID(ctx context.Context, id int64) (int64, error) {
	var affected int64

	err := r.observe("users.delete_by_id", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}

func (r *UsersRepo) DeleteAll(ctx context.Context) (int64, error) {
	var affected int64

	err := r.observe("users.delete_all", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users`)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	return affected, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
