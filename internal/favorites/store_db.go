package favorites

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

// PostgresStore scopes favorites per anonymous visitor id.
//
// Schema:
//
//	CREATE TABLE favorites (
//	    visitor_id TEXT NOT NULL,
//	    product_id BIGINT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    PRIMARY KEY (visitor_id, product_id)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) Load(ctx context.Context, visitor string) ([]int, error) {
	var out []int

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT product_id
			FROM favorites
			WHERE visitor_id = $1
			ORDER BY created_at ASC, product_id ASC
		`, visitor)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]int, 0, 16)
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				return err
			}
			out = append(out, id)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Toggle(ctx context.Context, visitor string, id int) (bool, error) {
	var favorite bool

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM favorites
			WHERE visitor_id = $1 AND product_id = $2
		`, visitor, id)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			favorite = false
			return nil
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO favorites (visitor_id, product_id)
			VALUES ($1, $2)
		`, visitor, id)
		if err != nil && !isUniqueViolation(err) {
			return err
		}
		favorite = true
		return nil
	})

	if err != nil {
		return false, err
	}
	return favorite, nil
}

func (s *PostgresStore) IsFavorite(ctx context.Context, visitor string, id int) (bool, error) {
	var exists bool

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM favorites
				WHERE visitor_id = $1 AND product_id = $2
			)
		`, visitor, id).Scan(&exists)
	})

	if err != nil {
		return false, err
	}
	return exists, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
