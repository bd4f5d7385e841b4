package milk

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

const recordColumns = `m.id, m.herd_id, m.date, m.amount_liters, m.fat_percentage, m.protein_percentage, m.created_at`

func (r *PostgresRepository) Create(ctx context.Context, in models.MilkRecordInput) (*models.MilkRecord, error) {
	query :=
		`INSERT INTO milk_productions AS m (herd_id, date, amount_liters, fat_percentage, protein_percentage)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + recordColumns

	return r.getOne(ctx, query, in.HerdID, in.Date, in.AmountLiters, in.FatPercentage, in.ProteinPercentage)
}

func (r *PostgresRepository) List(ctx context.Context, userID int64, f Filter) ([]models.MilkRecord, error) {
	query :=
		`SELECT ` + recordColumns + `
		 FROM milk_productions m JOIN herds h ON h.id = m.herd_id
		 WHERE h.user_id = $1 AND ($2::bigint = 0 OR m.herd_id = $2)
		 ORDER BY m.date, m.id
		 OFFSET $3 LIMIT NULLIF($4::int, 0)`

	rows, err := r.db.QueryContext(ctx, query, userID, f.HerdID, f.Skip, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.MilkRecord, 0)
	for rows.Next() {
		var m models.MilkRecord
		if err := scan(rows, &m); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id int64) (*models.MilkRecord, error) {
	query :=
		`SELECT ` + recordColumns + `
		 FROM milk_productions m JOIN herds h ON h.id = m.herd_id
		 WHERE m.id = $1 AND h.user_id = $2`

	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id int64, in models.MilkRecordInput) (*models.MilkRecord, error) {
	query :=
		`UPDATE milk_productions AS m
		 SET herd_id = $3, date = $4, amount_liters = $5, fat_percentage = $6, protein_percentage = $7
		 FROM herds h
		 WHERE m.id = $1 AND h.id = m.herd_id AND h.user_id = $2
		 RETURNING ` + recordColumns

	return r.getOne(ctx, query, id, userID, in.HerdID, in.Date, in.AmountLiters, in.FatPercentage, in.ProteinPercentage)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id int64) (*models.MilkRecord, error) {
	query :=
		`DELETE FROM milk_productions AS m
		 USING herds h
		 WHERE m.id = $1 AND h.id = m.herd_id AND h.user_id = $2
		 RETURNING ` + recordColumns

	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) Totals(ctx context.Context, userID int64, f Filter) (float64, int, error) {
	query :=
		`SELECT COALESCE(SUM(m.amount_liters), 0), COUNT(DISTINCT m.date::date)
		 FROM milk_productions m JOIN herds h ON h.id = m.herd_id
		 WHERE h.user_id = $1 AND ($2::bigint = 0 OR m.herd_id = $2)
		   AND ($3::timestamptz IS NULL OR m.date >= $3)`

	since := sql.NullTime{Time: f.Since, Valid: !f.Since.IsZero()}

	var (
		total float64
		days  int
	)
	if err := r.db.QueryRowContext(ctx, query, userID, f.HerdID, since).Scan(&total, &days); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, days, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner, m *models.MilkRecord) error {
	return s.Scan(&m.ID, &m.HerdID, &m.Date, &m.AmountLiters, &m.FatPercentage, &m.ProteinPercentage, &m.CreatedAt)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.MilkRecord, error) {
	var m models.MilkRecord
	if err := scan(r.db.QueryRowContext(ctx, query, args...), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &m, nil
}
