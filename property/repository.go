package property

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("property: not found")
	ErrDuplicateCode = errors.New("property: code already in use")
)

const listingColumns = `id, code, title, description, type, status, street, district, city, state,
	price, bedrooms, bathrooms, parking_spaces, area_m2, condominium_id, photo_urls, created_at, updated_at`

type Repository interface {
	Create(ctx context.Context, listing Listing) (Listing, error)
	Get(ctx context.Context, id string) (Listing, error)
	List(ctx context.Context, filters Filters) ([]Listing, int, error)
	Update(ctx context.Context, listing Listing) (Listing, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Listing, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, listing Listing) (Listing, error) {
	query := fmt.Sprintf(`
        INSERT INTO properties (id, code, title, description, type, status, street, district, city, state,
            price, bedrooms, bathrooms, parking_spaces, area_m2, condominium_id, photo_urls)
        VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10,
            $11, $12, $13, $14, $15, $16, $17)
        RETURNING %s
    `, listingColumns)

	row := r.pool.QueryRow(ctx, query,
		listing.ID,
		listing.Code,
		listing.Title,
		listing.Description,
		listing.Type,
		listing.Status,
		listing.Street,
		listing.District,
		listing.City,
		listing.State,
		listing.Price,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.ParkingSpaces,
		listing.AreaM2,
		listing.CondominiumID,
		listing.PhotoURLs,
	)

	created, err := scanListing(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Listing{}, ErrDuplicateCode
		}
		return Listing{}, fmt.Errorf("property: create: %w", err)
	}
	return created, nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, listingColumns)

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("property: get: %w", err)
	}
	return listing, nil
}

func (r *PGRepository) List(ctx context.Context, filters Filters) ([]Listing, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	base := fmt.Sprintf(`SELECT %s FROM properties`, listingColumns)
	where := []string{"1=1"}
	args := []any{}

	if filters.Type != "" {
		where = append(where, fmt.Sprintf("type=$%d", len(args)+1))
		args = append(args, filters.Type)
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status=$%d", len(args)+1))
		args = append(args, filters.Status)
	}
	if filters.City != "" {
		where = append(where, fmt.Sprintf("city ILIKE $%d", len(args)+1))
		args = append(args, filters.City)
	}
	if filters.District != "" {
		where = append(where, fmt.Sprintf("district ILIKE $%d", len(args)+1))
		args = append(args, filters.District)
	}
	if filters.PriceMin > 0 {
		where = append(where, fmt.Sprintf("price >= $%d", len(args)+1))
		args = append(args, filters.PriceMin)
	}
	if filters.PriceMax > 0 {
		where = append(where, fmt.Sprintf("price <= $%d", len(args)+1))
		args = append(args, filters.PriceMax)
	}
	if filters.Bedrooms > 0 {
		where = append(where, fmt.Sprintf("bedrooms >= $%d", len(args)+1))
		args = append(args, filters.Bedrooms)
	}
	if filters.CondominiumID != "" {
		where = append(where, fmt.Sprintf("condominium_id=$%d", len(args)+1))
		args = append(args, filters.CondominiumID)
	}

	whereClause := " WHERE " + strings.Join(where, " AND ")

	sortKey := mapSortKey(filters.SortKey)
	sortOrder := strings.ToUpper(filters.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	limit := filters.PageSize
	offset := (filters.Page - 1) * filters.PageSize

	query := fmt.Sprintf(`%s%s ORDER BY %s %s LIMIT %d OFFSET %d`, base, whereClause, sortKey, sortOrder, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("property: query list: %w", err)
	}
	defer rows.Close()

	list := []Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("property: iterate list: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties%s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("property: count list: %w", err)
	}

	return list, total, nil
}

func (r *PGRepository) Update(ctx context.Context, listing Listing) (Listing, error) {
	query := fmt.Sprintf(`
		UPDATE properties
		SET title = $2,
		    description = $3,
		    street = $4,
		    district = $5,
		    city = $6,
		    state = $7,
		    price = $8,
		    bedrooms = $9,
		    bathrooms = $10,
		    parking_spaces = $11,
		    area_m2 = $12,
		    condominium_id = $13,
		    photo_urls = $14,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, listingColumns)

	row := r.pool.QueryRow(ctx, query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.Street,
		listing.District,
		listing.City,
		listing.State,
		listing.Price,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.ParkingSpaces,
		listing.AreaM2,
		listing.CondominiumID,
		listing.PhotoURLs,
	)

	updated, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("property: update: %w", err)
	}
	return updated, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status) (Listing, error) {
	query := fmt.Sprintf(`
		UPDATE properties
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, listingColumns)

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("property: update status: %w", err)
	}
	return listing, nil
}

func scanListing(row pgx.Row) (Listing, error) {
	var listing Listing
	return listing, row.Scan(
		&listing.ID,
		&listing.Code,
		&listing.Title,
		&listing.Description,
		&listing.Type,
		&listing.Status,
		&listing.Street,
		&listing.District,
		&listing.City,
		&listing.State,
		&listing.Price,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.ParkingSpaces,
		&listing.AreaM2,
		&listing.CondominiumID,
		&listing.PhotoURLs,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
}

func mapSortKey(key string) string {
	switch key {
	case "price":
		return "price"
	case "areaM2":
		return "area_m2"
	case "bedrooms":
		return "bedrooms"
	case "updatedAt":
		return "updated_at"
	case "createdAt":
		fallthrough
	default:
		return "created_at"
	}
}
