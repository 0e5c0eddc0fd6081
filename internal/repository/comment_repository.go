package repository

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CommentRepository stores ticket comments. Comments are immutable once posted.
type CommentRepository interface {
	List(ctx context.Context) ([]domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) error
}

type commentRepository struct {
	doc Document
}

// NewCommentRepository builds the repository.
func NewCommentRepository(doc Document) CommentRepository {
	return &commentRepository{doc: doc}
}

func (r *commentRepository) List(ctx context.Context) ([]domain.Comment, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	return sortComments(data.Comments), nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Comment, 0)
	for _, c := range data.Comments {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return sortComments(result), nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.CommentIndex(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Comments[idx], nil
}

// Create appends the comment and, in the same write, bumps the ticket's
// comments_count and updated_at. A missing ticket yields ErrNotFound.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if comment.ID == "" {
		comment.ID = domain.NewID("comment")
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = domain.Now()
	}

	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.TicketIndex(comment.TicketID)
		if idx < 0 {
			return ErrNotFound
		}
		d.Comments = append(d.Comments, *comment)
		d.Tickets[idx].CommentsCount++
		d.Tickets[idx].UpdatedAt = comment.CreatedAt
		return nil
	})
	return err
}

func sortComments(comments []domain.Comment) []domain.Comment {
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}
