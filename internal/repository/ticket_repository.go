package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// Ticket sort orders.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortVotes    = "votes"
	SortComments = "comments"
)

// TicketFilter narrows ticket listings. Empty fields match everything.
type TicketFilter struct {
	CreatedBy  string
	AssignedTo string
	Status     domain.TicketStatus
	Category   string
	Search     string
	Sort       string
}

// TicketPatch lists the ticket fields an update may change; nil means unchanged.
type TicketPatch struct {
	Subject     *string
	Description *string
	Status      *domain.TicketStatus
	Category    *string
	Priority    *domain.TicketPriority
	AssignedTo  *string
	Votes       *int
	Attachments *[]string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListByAssignee(ctx context.Context, assigneeID string) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	AdjustVotes(ctx context.Context, id string, delta int) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	doc Document
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(doc Document) TicketRepository {
	return &ticketRepository{doc: doc}
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	return FilterTickets(data.Tickets, filter), nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.List(ctx, TicketFilter{CreatedBy: userID})
}

func (r *ticketRepository) ListByAssignee(ctx context.Context, assigneeID string) ([]domain.Ticket, error) {
	return r.List(ctx, TicketFilter{AssignedTo: assigneeID})
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.TicketIndex(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Tickets[idx], nil
}

// Create fills id, timestamps and defaults, then bumps the matching
// category counter in the same write.
func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = domain.NewID("ticket")
	}
	now := domain.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Votes < 0 {
		ticket.Votes = 0
	}
	if ticket.Attachments == nil {
		ticket.Attachments = []string{}
	}
	ticket.CommentsCount = 0

	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		d.Tickets = append(d.Tickets, *ticket)
		d.AdjustCategoryCount(ticket.Category, 1)
		return nil
	})
	return err
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	return r.modify(ctx, id, func(d *domain.Dataset, t *domain.Ticket) error {
		if patch.Status != nil {
			if !domain.CanTransition(t.Status, *patch.Status) {
				return ErrInvalidTransition
			}
			t.Status = *patch.Status
		}
		if patch.Subject != nil {
			t.Subject = *patch.Subject
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
		if patch.Votes != nil {
			t.Votes = max(*patch.Votes, 0)
		}
		if patch.Attachments != nil {
			t.Attachments = append([]string{}, (*patch.Attachments)...)
		}
		if patch.Category != nil && !strings.EqualFold(*patch.Category, t.Category) {
			d.AdjustCategoryCount(t.Category, -1)
			d.AdjustCategoryCount(*patch.Category, 1)
			t.Category = *patch.Category
		}
		return nil
	})
}

func (r *ticketRepository) AdjustVotes(ctx context.Context, id string, delta int) (*domain.Ticket, error) {
	return r.modify(ctx, id, func(_ *domain.Dataset, t *domain.Ticket) error {
		t.Votes = max(t.Votes+delta, 0)
		return nil
	})
}

// Delete removes the ticket together with its comments and releases its
// category counter.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.TicketIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		d.AdjustCategoryCount(d.Tickets[idx].Category, -1)
		d.Tickets = append(d.Tickets[:idx], d.Tickets[idx+1:]...)

		kept := d.Comments[:0]
		for _, c := range d.Comments {
			if c.TicketID != id {
				kept = append(kept, c)
			}
		}
		d.Comments = kept
		return nil
	})
	return err
}

func (r *ticketRepository) modify(ctx context.Context, id string, fn func(*domain.Dataset, *domain.Ticket) error) (*domain.Ticket, error) {
	var updated domain.Ticket
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.TicketIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		ticket := d.Tickets[idx]
		if err := fn(d, &ticket); err != nil {
			return err
		}
		ticket.UpdatedAt = domain.Now()
		d.Tickets[idx] = ticket
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// FilterTickets applies filter to tickets and returns a new, sorted slice.
func FilterTickets(tickets []domain.Ticket, filter TicketFilter) []domain.Ticket {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if filter.CreatedBy != "" && t.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Subject), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		result = append(result, t)
	}

	newest := func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) }
	var less func(i, j int) bool
	switch filter.Sort {
	case SortOldest:
		less = func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) }
	case SortVotes:
		less = func(i, j int) bool {
			if result[i].Votes != result[j].Votes {
				return result[i].Votes > result[j].Votes
			}
			return newest(i, j)
		}
	case SortComments:
		less = func(i, j int) bool {
			if result[i].CommentsCount != result[j].CommentsCount {
				return result[i].CommentsCount > result[j].CommentsCount
			}
			return newest(i, j)
		}
	default:
		less = newest
	}
	sort.SliceStable(result, less)
	return result
}
