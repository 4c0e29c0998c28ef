package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// TicketFilter captures the optional equality filters of the ticket list.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Category *domain.TicketCategory
	Limit    int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetView(ctx context.Context, id string) (*domain.TicketView, error)
	ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, changedBy *string) (*domain.TicketHistory, error)
	ResolutionSamples(ctx context.Context) ([]domain.ResolutionSample, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketViewSelect = `
        SELECT t.id, t.customer_id, t.title, t.description, t.status, t.priority, t.category,
               t.created_at, t.updated_at,
               c.id, c.name, c.company, c.email, c.phone, c.created_at
        FROM support_tickets t
        JOIN customers c ON c.id = t.customer_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_tickets (customer_id, title, description, status, priority, category)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetView(ctx context.Context, id string) (*domain.TicketView, error) {
	view, err := scanTicketView(r.pool.QueryRow(ctx, ticketViewSelect+` WHERE t.id=$1`, id))
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (r *ticketRepository) ListViews(ctx context.Context, filter TicketFilter) ([]domain.TicketView, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("t.category=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC`, ticketViewSelect, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketView{}
	for rows.Next() {
		view, err := scanTicketView(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *view)
	}
	return result, rows.Err()
}

// UpdateStatus changes the status and appends the audit entry in one transaction. The returned
// history carries the previous status.
func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, changedBy *string) (history *domain.TicketHistory, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	entry := domain.TicketHistory{TicketID: id, ChangedByID: changedBy, NewStatus: status}
	if err = tx.QueryRow(ctx, `SELECT status FROM support_tickets WHERE id=$1 FOR UPDATE`, id).Scan(&entry.OldStatus); err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `UPDATE support_tickets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id); err != nil {
		return nil, err
	}

	const insertHistory = `
        INSERT INTO ticket_history (ticket_id, changed_by_id, old_status, new_status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	if err = tx.QueryRow(ctx, insertHistory, entry.TicketID, entry.ChangedByID, entry.OldStatus, entry.NewStatus).
		Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ticketRepository) ResolutionSamples(ctx context.Context) ([]domain.ResolutionSample, error) {
	const query = `
        SELECT t.id, t.created_at, MIN(h.created_at)
        FROM support_tickets t
        JOIN ticket_history h ON h.ticket_id = t.id AND h.new_status = 'resolved'
        GROUP BY t.id, t.created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ResolutionSample
	for rows.Next() {
		var sample domain.ResolutionSample
		if err := rows.Scan(&sample.TicketID, &sample.CreatedAt, &sample.ResolvedAt); err != nil {
			return nil, err
		}
		result = append(result, sample)
	}
	return result, rows.Err()
}

func scanTicketView(row pgx.Row) (*domain.TicketView, error) {
	var view domain.TicketView
	if err := row.Scan(
		&view.ID,
		&view.CustomerID,
		&view.Title,
		&view.Description,
		&view.Status,
		&view.Priority,
		&view.Category,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.Customer.ID,
		&view.Customer.Name,
		&view.Customer.Company,
		&view.Customer.Email,
		&view.Customer.Phone,
		&view.Customer.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &view, nil
}

// IsNotFound reports whether err came from a lookup that matched no row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
