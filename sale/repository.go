package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the data access required by the sale service. All
// mutations run inside the caller's transaction so the row lock taken by
// GetForUpdate serializes writers per sale.
type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, p Process) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (Process, error)
	Save(ctx context.Context, tx pgx.Tx, p Process) error
	Get(ctx context.Context, saleID string) (Process, error)
	List(ctx context.Context, filters Filters) ([]Process, int, error)
}

// Filters narrows List results.
type Filters struct {
	Status     Status
	PropertyID string
	Page       int
	PageSize   int
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const saleColumns = `id, property_id, buyer_name, buyer_email, buyer_phone,
       seller_name, seller_email, seller_phone,
       offer_amount, payment_type, current_step_index, status::text, created_at, updated_at`

// Create inserts the whole record: sale row, step rows, checklist rows.
func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, p Process) error {
	const insertSale = `
		INSERT INTO sales (id, property_id, buyer_name, buyer_email, buyer_phone,
		                   seller_name, seller_email, seller_phone,
		                   offer_amount, payment_type, current_step_index, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
	`
	if _, err := tx.Exec(ctx, insertSale,
		p.ID, p.PropertyID,
		p.Buyer.Name, p.Buyer.Email, p.Buyer.Phone,
		p.Seller.Name, p.Seller.Email, p.Seller.Phone,
		p.OfferAmount, p.PaymentType, p.CurrentStep, p.Status, p.CreatedAt,
	); err != nil {
		return fmt.Errorf("sale: insert sale: %w", mapPgError(err))
	}

	const insertStep = `
		INSERT INTO sale_steps (sale_id, slug, name, description, position, status, optional, action)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`
	const insertItem = `
		INSERT INTO sale_checklist_items (sale_id, step_slug, slug, label, category, required, position, status, file_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	for _, step := range p.Steps {
		if _, err := tx.Exec(ctx, insertStep,
			p.ID, step.Slug, step.Name, step.Description, step.Position, step.Status, step.Optional, step.Action,
		); err != nil {
			return fmt.Errorf("sale: insert step %s: %w", step.Slug, mapPgError(err))
		}
		for _, item := range step.Checklist {
			if _, err := tx.Exec(ctx, insertItem,
				p.ID, step.Slug, item.Slug, item.Label, item.Category, item.Required, item.Position, item.Status, item.FileURL,
			); err != nil {
				return fmt.Errorf("sale: insert item %s/%s: %w", step.Slug, item.Slug, mapPgError(err))
			}
		}
	}
	return nil
}

// GetForUpdate locks the sale row and rehydrates the entire record. The
// lock is the single-writer guarantee: concurrent mutations of the same
// sale queue up behind it.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (Process, error) {
	return loadProcess(ctx, tx, saleID, true)
}

// Get rehydrates the record without locking, for reads.
func (r *PGRepository) Get(ctx context.Context, saleID string) (Process, error) {
	return loadProcess(ctx, r.pool, saleID, false)
}

// List returns a page of sale processes plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, filters Filters) ([]Process, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	where := " WHERE 1=1"
	args := []any{}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.PropertyID != "" {
		args = append(args, filters.PropertyID)
		where += fmt.Sprintf(" AND property_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sale: count: %w", err)
	}

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)
	query := "SELECT " + saleColumns + " FROM sales" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sale: list: %w", err)
	}
	defer rows.Close()

	processes := []Process{}
	for rows.Next() {
		p, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sale: scan sale: %w", err)
		}
		processes = append(processes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sale: iterate sales: %w", err)
	}

	for i := range processes {
		if err := loadChildren(ctx, r.pool, &processes[i]); err != nil {
			return nil, 0, err
		}
	}
	return processes, total, nil
}

// Save writes the whole record back: cursor and status on the sale row,
// step statuses and RGI fields, item statuses and file URLs, and the RGI
// history via upsert so prior entries are only ever flipped from current
// to completed, never rewritten.
func (r *PGRepository) Save(ctx context.Context, tx pgx.Tx, p Process) error {
	const updateSale = `
		UPDATE sales
		SET current_step_index = $2, status = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, updateSale, p.ID, p.CurrentStep, p.Status)
	if err != nil {
		return fmt.Errorf("sale: update sale: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}

	const updateStep = `
		UPDATE sale_steps
		SET status = $3, rgi_protocol = $4, rgi_protocol_date = $5, rgi_current_stage = $6
		WHERE sale_id = $1 AND slug = $2
	`
	const updateItem = `
		UPDATE sale_checklist_items
		SET status = $4, file_url = $5
		WHERE sale_id = $1 AND step_slug = $2 AND slug = $3
	`
	const upsertHistory = `
		INSERT INTO sale_rgi_history (sale_id, step_slug, seq, status, label, entry_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (sale_id, step_slug, seq) DO UPDATE SET status = EXCLUDED.status
	`

	for _, step := range p.Steps {
		var (
			protocol     *string
			protocolDate any
			stage        *string
		)
		if step.RGI != nil {
			protocol = &step.RGI.Protocol
			protocolDate = step.RGI.ProtocolDate
			s := string(step.RGI.CurrentStage)
			stage = &s
		}
		if _, err := tx.Exec(ctx, updateStep, p.ID, step.Slug, step.Status, protocol, protocolDate, stage); err != nil {
			return fmt.Errorf("sale: update step %s: %w", step.Slug, mapPgError(err))
		}
		for _, item := range step.Checklist {
			if _, err := tx.Exec(ctx, updateItem, p.ID, step.Slug, item.Slug, item.Status, item.FileURL); err != nil {
				return fmt.Errorf("sale: update item %s/%s: %w", step.Slug, item.Slug, mapPgError(err))
			}
		}
		if step.RGI != nil {
			for _, entry := range step.RGI.History {
				if _, err := tx.Exec(ctx, upsertHistory, p.ID, step.Slug, entry.Seq, entry.Status, entry.Label, entry.Date); err != nil {
					return fmt.Errorf("sale: upsert rgi history %s/%d: %w", step.Slug, entry.Seq, mapPgError(err))
				}
			}
		}
	}
	return nil
}

func loadProcess(ctx context.Context, q querier, saleID string, forUpdate bool) (Process, error) {
	query := "SELECT " + saleColumns + " FROM sales WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	p, err := scanSale(q.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Process{}, ErrSaleNotFound
		}
		return Process{}, fmt.Errorf("sale: get sale: %w", mapPgError(err))
	}

	if err := loadChildren(ctx, q, &p); err != nil {
		return Process{}, err
	}
	return p, nil
}

func loadChildren(ctx context.Context, q querier, p *Process) error {
	const stepsSQL = `
		SELECT slug, name, description, position, status::text, optional, action,
		       rgi_protocol, rgi_protocol_date, rgi_current_stage
		FROM sale_steps
		WHERE sale_id = $1
		ORDER BY position
	`
	rows, err := q.Query(ctx, stepsSQL, p.ID)
	if err != nil {
		return fmt.Errorf("sale: load steps: %w", err)
	}
	defer rows.Close()

	p.Steps = p.Steps[:0]
	for rows.Next() {
		var (
			step     Step
			protocol *string
			protDate *time.Time
			stage    *string
		)
		if err := rows.Scan(&step.Slug, &step.Name, &step.Description, &step.Position, &step.Status,
			&step.Optional, &step.Action, &protocol, &protDate, &stage); err != nil {
			return fmt.Errorf("sale: scan step: %w", err)
		}
		if protocol != nil {
			step.RGI = &RGIData{Protocol: *protocol}
			if protDate != nil {
				step.RGI.ProtocolDate = *protDate
			}
			if stage != nil {
				step.RGI.CurrentStage = RGIStage(*stage)
			}
		}
		p.Steps = append(p.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sale: iterate steps: %w", err)
	}

	const itemsSQL = `
		SELECT step_slug, slug, label, category::text, required, position, status::text, file_url
		FROM sale_checklist_items
		WHERE sale_id = $1
		ORDER BY step_slug, position
	`
	itemRows, err := q.Query(ctx, itemsSQL, p.ID)
	if err != nil {
		return fmt.Errorf("sale: load items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			stepSlug string
			item     ChecklistItem
		)
		if err := itemRows.Scan(&stepSlug, &item.Slug, &item.Label, &item.Category,
			&item.Required, &item.Position, &item.Status, &item.FileURL); err != nil {
			return fmt.Errorf("sale: scan item: %w", err)
		}
		for i := range p.Steps {
			if p.Steps[i].Slug == stepSlug {
				p.Steps[i].Checklist = append(p.Steps[i].Checklist, item)
				break
			}
		}
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("sale: iterate items: %w", err)
	}

	const historySQL = `
		SELECT step_slug, seq, status::text, label, entry_date
		FROM sale_rgi_history
		WHERE sale_id = $1
		ORDER BY step_slug, seq
	`
	histRows, err := q.Query(ctx, historySQL, p.ID)
	if err != nil {
		return fmt.Errorf("sale: load rgi history: %w", err)
	}
	defer histRows.Close()

	for histRows.Next() {
		var (
			stepSlug string
			entry    RGIHistoryEntry
		)
		if err := histRows.Scan(&stepSlug, &entry.Seq, &entry.Status, &entry.Label, &entry.Date); err != nil {
			return fmt.Errorf("sale: scan rgi history: %w", err)
		}
		for i := range p.Steps {
			if p.Steps[i].Slug == stepSlug && p.Steps[i].RGI != nil {
				p.Steps[i].RGI.History = append(p.Steps[i].RGI.History, entry)
				break
			}
		}
	}
	if err := histRows.Err(); err != nil {
		return fmt.Errorf("sale: iterate rgi history: %w", err)
	}

	return nil
}

func scanSale(row pgx.Row) (Process, error) {
	var p Process
	err := row.Scan(
		&p.ID, &p.PropertyID,
		&p.Buyer.Name, &p.Buyer.Email, &p.Buyer.Phone,
		&p.Seller.Name, &p.Seller.Email, &p.Seller.Phone,
		&p.OfferAmount, &p.PaymentType, &p.CurrentStep, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Process{}, err
	}
	return p, nil
}

// mapPgError converts lock and serialization failures into ErrConflict so
// callers can retry after re-reading.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Code)
		}
	}
	return err
}
