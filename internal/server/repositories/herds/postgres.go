package herds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/dbx"
	"github.com/dmitrijs2005/milktracker/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const herdColumns = `id, user_id, name, cow_count, location_line1, location_line2, created_at`

func (r *PostgresRepository) Create(ctx context.Context, userID int64, in models.HerdInput) (*models.Herd, error) {
	query :=
		`INSERT INTO herds (user_id, name, cow_count, location_line1, location_line2)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + herdColumns

	return r.getOne(ctx, query, userID, in.Name, in.CowCount, in.LocationLine1, in.LocationLine2)
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, skip, limit int) ([]models.Herd, error) {
	query :=
		`SELECT ` + herdColumns + ` FROM herds
		 WHERE user_id = $1
		 ORDER BY id
		 OFFSET $2 LIMIT NULLIF($3::int, 0)`

	rows, err := r.db.QueryContext(ctx, query, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Herd, 0)
	for rows.Next() {
		var h models.Herd
		if err := scan(rows, &h); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.Herd, error) {
	return r.getOne(ctx, `SELECT `+herdColumns+` FROM herds WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id int64, in models.HerdInput) (*models.Herd, error) {
	query :=
		`UPDATE herds
		 SET name = $3, cow_count = $4, location_line1 = $5, location_line2 = $6
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + herdColumns

	return r.getOne(ctx, query, id, userID, in.Name, in.CowCount, in.LocationLine1, in.LocationLine2)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) (*models.Herd, error) {
	return r.getOne(ctx, `DELETE FROM herds WHERE id = $1 AND user_id = $2 RETURNING `+herdColumns, id, userID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner, h *models.Herd) error {
	return s.Scan(&h.ID, &h.UserID, &h.Name, &h.CowCount, &h.LocationLine1, &h.LocationLine2, &h.CreatedAt)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Herd, error) {
	var h models.Herd
	if err := scan(r.db.QueryRowContext(ctx, query, args...), &h); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &h, nil
}
