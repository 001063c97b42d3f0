package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested team member does not exist.
	ErrNotFound = errors.New("team: not found")
	// ErrDuplicateEmail signals another member already uses the email.
	ErrDuplicateEmail = errors.New("team: email already registered")
)

const memberColumns = "id, full_name, role_title, creci, phone, email, photo_url, active, created_at"

// Repository provides access to team member records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a team member by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM team_members WHERE id = $1`, memberColumns)

	member, err := scanMember(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, fmt.Errorf("team: query by id: %w", err)
	}

	return member, nil
}

// List fetches active team members ordered by name. When includeInactive is
// true, deactivated members are returned as well.
func (r *Repository) List(ctx context.Context, includeInactive bool) ([]Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM team_members ORDER BY full_name ASC`, memberColumns)
	if !includeInactive {
		query = fmt.Sprintf(`SELECT %s FROM team_members WHERE active ORDER BY full_name ASC`, memberColumns)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("team: list: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0, 16)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("team: scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team: iterate members: %w", err)
	}

	return members, nil
}

// Create inserts a new team member and returns the stored row.
func (r *Repository) Create(ctx context.Context, id string, params CreateMemberParams) (Member, error) {
	query := fmt.Sprintf(`
		INSERT INTO team_members (id, full_name, role_title, creci, phone, email, photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, memberColumns)

	member, err := scanMember(r.pool.QueryRow(ctx, query,
		id, params.FullName, params.RoleTitle, params.CRECI, params.Phone, params.Email, params.PhotoURL,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Member{}, ErrDuplicateEmail
		}
		return Member{}, fmt.Errorf("team: create member: %w", err)
	}

	return member, nil
}

// SetActive flips a member's active flag.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE team_members SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("team: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (Member, error) {
	var member Member
	err := row.Scan(
		&member.ID,
		&member.FullName,
		&member.RoleTitle,
		&member.CRECI,
		&member.Phone,
		&member.Email,
		&member.PhotoURL,
		&member.Active,
		&member.CreatedAt,
	)
	return member, err
}
