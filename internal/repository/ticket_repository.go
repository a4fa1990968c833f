package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// ErrTicketNotFound is returned when no ticket exists for a session.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketSink persists enrollment tickets with their embedding. Store is idempotent per
// session: when a ticket already exists for the session the stored ticket is returned.
type TicketSink interface {
	Store(ctx context.Context, ticket *domain.Ticket, vector []float64) (*domain.Ticket, error)
	GetBySession(ctx context.Context, sessionID string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed sink.
func NewTicketRepository(pool *pgxpool.Pool) TicketSink {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Store(ctx context.Context, ticket *domain.Ticket, vector []float64) (*domain.Ticket, error) {
	const query = `
        INSERT INTO enrollment_tickets (id, session_id, subject, description, category, assignee, priority,
            status, requester_email, member_details, embedding, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        ON CONFLICT (session_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.SessionID,
		ticket.Subject,
		ticket.Description,
		ticket.Category,
		ticket.Assignee,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterEmail,
		ticket.MemberDetails,
		vector,
		ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return r.GetBySession(ctx, ticket.SessionID)
}

func (r *ticketRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Ticket, error) {
	const query = `
        SELECT id, session_id, subject, description, category, assignee, priority, status,
               requester_email, member_details, created_at
        FROM enrollment_tickets WHERE session_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&ticket.ID,
		&ticket.SessionID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Category,
		&ticket.Assignee,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterEmail,
		&ticket.MemberDetails,
		&ticket.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// MemoryTicketSink keeps tickets and vectors in process memory.
type MemoryTicketSink struct {
	mu      sync.RWMutex
	tickets map[string]*domain.Ticket
	vectors map[string][]float64
}

// NewMemoryTicketSink returns an empty sink.
func NewMemoryTicketSink() *MemoryTicketSink {
	return &MemoryTicketSink{
		tickets: make(map[string]*domain.Ticket),
		vectors: make(map[string][]float64),
	}
}

func (m *MemoryTicketSink) Store(ctx context.Context, ticket *domain.Ticket, vector []float64) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.tickets[ticket.SessionID]; ok {
		return existing.Clone(), nil
	}
	m.tickets[ticket.SessionID] = ticket.Clone()
	m.vectors[ticket.SessionID] = append([]float64(nil), vector...)
	return ticket.Clone(), nil
}

func (m *MemoryTicketSink) GetBySession(ctx context.Context, sessionID string) (*domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ticket, ok := m.tickets[sessionID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return ticket.Clone(), nil
}

// Vector returns the embedding stored with a session's ticket.
func (m *MemoryTicketSink) Vector(sessionID string) ([]float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[sessionID]
	return v, ok
}

// Count reports how many tickets are stored.
func (m *MemoryTicketSink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tickets)
}
