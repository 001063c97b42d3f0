package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested message does not exist.
var ErrNotFound = errors.New("contact: not found")

const messageColumns = "id, name, email, phone, body, property_id, handled, created_at"

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create stores an incoming contact form message.
func (r *Repository) Create(ctx context.Context, id string, params CreateParams) (Message, error) {
	query := fmt.Sprintf(`
		INSERT INTO contact_messages (id, name, email, phone, body, property_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, messageColumns)

	msg, err := scanMessage(r.pool.QueryRow(ctx, query,
		id, params.Name, params.Email, params.Phone, params.Body, params.PropertyID,
	))
	if err != nil {
		return Message{}, fmt.Errorf("contact: create: %w", err)
	}
	return msg, nil
}

// List returns messages, newest first. When onlyUnhandled is true, messages
// already marked handled are skipped.
func (r *Repository) List(ctx context.Context, onlyUnhandled bool) ([]Message, error) {
	query := fmt.Sprintf(`SELECT %s FROM contact_messages ORDER BY created_at DESC`, messageColumns)
	if onlyUnhandled {
		query = fmt.Sprintf(`SELECT %s FROM contact_messages WHERE NOT handled ORDER BY created_at DESC`, messageColumns)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("contact: list: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, 8)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("contact: scan: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contact: iterate: %w", err)
	}
	return out, nil
}

// MarkHandled flags a message as dealt with.
func (r *Repository) MarkHandled(ctx context.Context, id string) (Message, error) {
	query := fmt.Sprintf(`
		UPDATE contact_messages
		SET handled = true
		WHERE id = $1
		RETURNING %s
	`, messageColumns)

	msg, err := scanMessage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, ErrNotFound
		}
		return Message{}, fmt.Errorf("contact: mark handled: %w", err)
	}
	return msg, nil
}

func scanMessage(row pgx.Row) (Message, error) {
	var msg Message
	return msg, row.Scan(
		&msg.ID,
		&msg.Name,
		&msg.Email,
		&msg.Phone,
		&msg.Body,
		&msg.PropertyID,
		&msg.Handled,
		&msg.CreatedAt,
	)
}
