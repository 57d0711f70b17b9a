package dal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMapping is returned when a stored row cannot be turned into a Jeep
	ErrMapping = errors.New("row mapping failed")
	// ErrInvalidPrice is returned for a base price that is negative or finer than cents
	ErrInvalidPrice = errors.New("invalid base price")
)

// Repository defines catalog lookups
type Repository interface {
	FetchJeeps(ctx context.Context, filter JeepFilter) ([]Jeep, error)
}

// DBTX is the subset of database/sql the repository needs.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect renders the n-th (1-based) bind parameter
type Dialect func(n int) string

// Postgres numbers its parameters
func Postgres(n int) string {
	return "$" + strconv.Itoa(n)
}

// SQLite uses anonymous parameters
func SQLite(int) string {
	return "?"
}

const selectJeeps = `SELECT model_pk, model_id, trim_level, num_doors, wheel_size, base_price FROM models`

// SQLRepository reads the models table through database/sql
type SQLRepository struct {
	db      DBTX
	dialect Dialect
}

// NewSQLRepository returns a repository bound to db; a nil dialect means Postgres
func NewSQLRepository(db DBTX, dialect Dialect) *SQLRepository {
	if dialect == nil {
		dialect = Postgres
	}
	return &SQLRepository{db: db, dialect: dialect}
}

// FetchJeeps returns the rows equal to every field set in filter, in storage order
func (r *SQLRepository) FetchJeeps(ctx context.Context, filter JeepFilter) ([]Jeep, error) {
	query, args := r.buildQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	jeeps := []Jeep{}
	for rows.Next() {
		jeep, err := scanJeep(rows)
		if err != nil {
			return nil, err
		}
		jeeps = append(jeeps, jeep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return jeeps, nil
}

func (r *SQLRepository) buildQuery(filter JeepFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Model != nil {
		args = append(args, filter.Model.String())
		where = append(where, "model_id = "+r.dialect(len(args)))
	}
	if filter.Trim != nil {
		args = append(args, *filter.Trim)
		where = append(where, "trim_level = "+r.dialect(len(args)))
	}

	query := selectJeeps
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query, args
}

// CreateJeep inserts jeep and returns it with its primary key filled in.
// A zero ModelPK lets the table pick the next key.
func (r *SQLRepository) CreateJeep(ctx context.Context, jeep Jeep) (Jeep, error) {
	if !jeep.ModelID.Valid() {
		return Jeep{}, fmt.Errorf("%w: %q", ErrUnknownModel, jeep.ModelID)
	}
	if jeep.BasePrice.IsNegative() {
		return Jeep{}, fmt.Errorf("%w: %s is negative", ErrInvalidPrice, jeep.BasePrice)
	}
	if !jeep.BasePrice.Equal(jeep.BasePrice.Round(2)) {
		return Jeep{}, fmt.Errorf("%w: %s has more than two fraction digits", ErrInvalidPrice, jeep.BasePrice)
	}

	pk := jeep.ModelPK
	if pk == 0 {
		err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(model_pk), 0) + 1 FROM models`).Scan(&pk)
		if err != nil {
			return Jeep{}, fmt.Errorf("db error: %w", err)
		}
	}

	query := fmt.Sprintf(
		`INSERT INTO models (model_pk, model_id, trim_level, num_doors, wheel_size, base_price) VALUES (%s, %s, %s, %s, %s, %s)`,
		r.dialect(1), r.dialect(2), r.dialect(3), r.dialect(4), r.dialect(5), r.dialect(6),
	)
	_, err := r.db.ExecContext(ctx, query,
		pk, jeep.ModelID.String(), jeep.TrimLevel, jeep.NumDoors, jeep.WheelSize, jeep.BasePrice.StringFixed(2))
	if err != nil {
		return Jeep{}, fmt.Errorf("db error: %w", err)
	}

	jeep.ModelPK = pk
	return jeep, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanJeep maps one models row; price is kept exact and normalized to cents
func scanJeep(row rowScanner) (Jeep, error) {
	var (
		jeep    Jeep
		modelID string
		price   decimal.NullDecimal
	)
	err := row.Scan(&jeep.ModelPK, &modelID, &jeep.TrimLevel, &jeep.NumDoors, &jeep.WheelSize, &price)
	if err != nil {
		return Jeep{}, fmt.Errorf("%w: %w", ErrMapping, err)
	}

	jeep.ModelID, err = ParseJeepModel(modelID)
	if err != nil {
		return Jeep{}, fmt.Errorf("%w: model_pk=%d: %w", ErrMapping, jeep.ModelPK, err)
	}

	if !price.Valid {
		return Jeep{}, fmt.Errorf("%w: model_pk=%d: base_price is null", ErrMapping, jeep.ModelPK)
	}
	if price.Decimal.IsNegative() {
		return Jeep{}, fmt.Errorf("%w: model_pk=%d: negative base_price %s", ErrMapping, jeep.ModelPK, price.Decimal)
	}
	jeep.BasePrice = price.Decimal.Round(2)

	return jeep, nil
}
