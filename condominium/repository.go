package condominium

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested condominium does not exist.
var ErrNotFound = errors.New("condominium: not found")

const condominiumColumns = "id, name, builder, street, district, city, state, delivery_date, amenities, price_min, price_max, created_at"

// Repository provides access to condominium records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a condominium by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Condominium, error) {
	query := fmt.Sprintf(`SELECT %s FROM condominiums WHERE id = $1`, condominiumColumns)

	condo, err := scanCondominium(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Condominium{}, ErrNotFound
		}
		return Condominium{}, fmt.Errorf("condominium: query by id: %w", err)
	}
	return condo, nil
}

// List fetches condominiums ordered by name, optionally filtered by city.
func (r *Repository) List(ctx context.Context, city string) ([]Condominium, error) {
	query := fmt.Sprintf(`SELECT %s FROM condominiums ORDER BY name ASC`, condominiumColumns)
	args := []any{}
	if city != "" {
		query = fmt.Sprintf(`SELECT %s FROM condominiums WHERE city ILIKE $1 ORDER BY name ASC`, condominiumColumns)
		args = append(args, city)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("condominium: list: %w", err)
	}
	defer rows.Close()

	condos := []Condominium{}
	for rows.Next() {
		condo, err := scanCondominium(rows)
		if err != nil {
			return nil, fmt.Errorf("condominium: scan: %w", err)
		}
		condos = append(condos, condo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("condominium: iterate: %w", err)
	}

	return condos, nil
}

// Create inserts a new condominium and returns the stored row.
func (r *Repository) Create(ctx context.Context, id string, condo Condominium) (Condominium, error) {
	query := fmt.Sprintf(`
		INSERT INTO condominiums (id, name, builder, street, district, city, state, delivery_date, amenities, price_min, price_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, condominiumColumns)

	created, err := scanCondominium(r.pool.QueryRow(ctx, query,
		id,
		condo.Name,
		condo.Builder,
		condo.Street,
		condo.District,
		condo.City,
		condo.State,
		condo.DeliveryDate,
		condo.Amenities,
		condo.PriceMin,
		condo.PriceMax,
	))
	if err != nil {
		return Condominium{}, fmt.Errorf("condominium: create: %w", err)
	}
	return created, nil
}

func scanCondominium(row pgx.Row) (Condominium, error) {
	var condo Condominium
	return condo, row.Scan(
		&condo.ID,
		&condo.Name,
		&condo.Builder,
		&condo.Street,
		&condo.District,
		&condo.City,
		&condo.State,
		&condo.DeliveryDate,
		&condo.Amenities,
		&condo.PriceMin,
		&condo.PriceMax,
		&condo.CreatedAt,
	)
}
