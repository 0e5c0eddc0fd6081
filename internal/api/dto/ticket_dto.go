package dto

import (
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// CreateTicketRequest payload. Title and userId are accepted as aliases of
// subject and created_by.
type CreateTicketRequest struct {
	Subject     string   `json:"subject" validate:"max=200"`
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"max=100"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	CreatedBy   string   `json:"created_by"`
	UserID      string   `json:"userId"`
	AssignedTo  string   `json:"assigned_to"`
	Attachments []string `json:"attachments" validate:"omitempty,dive,max=255"`
}

// UpdateTicketRequest carries the fields to change; absent fields are kept.
type UpdateTicketRequest struct {
	Subject     *string   `json:"subject" validate:"omitempty,min=1,max=200"`
	Title       *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Priority    *string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	AssignedTo  *string   `json:"assigned_to"`
	Votes       *int      `json:"votes"`
	Attachments *[]string `json:"attachments" validate:"omitempty,dive,max=255"`
}

// Patch converts the request into a repository patch.
func (r UpdateTicketRequest) Patch() repository.TicketPatch {
	patch := repository.TicketPatch{
		Subject:     r.Subject,
		Description: r.Description,
		Category:    r.Category,
		AssignedTo:  r.AssignedTo,
		Votes:       r.Votes,
		Attachments: r.Attachments,
	}
	if patch.Subject == nil {
		patch.Subject = r.Title
	}
	if r.Status != nil {
		status := domain.TicketStatus(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.TicketPriority(*r.Priority)
		patch.Priority = &priority
	}
	return patch
}

// VoteRequest payload.
type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// AssignRequest payload. An empty assignee unassigns the ticket.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketListQuery captures query filters for ticket listings.
type TicketListQuery struct {
	UserID     string `query:"userId"`
	AssignedTo string `query:"assignedTo"`
	Status     string `query:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Category   string `query:"category"`
	Search     string `query:"search"`
	Role       string `query:"role" validate:"omitempty,oneof=end_user support_agent admin"`
	Sort       string `query:"sort" validate:"omitempty,oneof=newest oldest votes comments"`
}

// Filter converts the query into a repository filter.
func (q TicketListQuery) Filter() repository.TicketFilter {
	return repository.TicketFilter{
		CreatedBy:  q.UserID,
		AssignedTo: q.AssignedTo,
		Status:     domain.TicketStatus(q.Status),
		Category:   q.Category,
		Search:     q.Search,
		Sort:       q.Sort,
	}
}

// CreateCommentRequest payload. ticketId and userId are accepted as aliases.
type CreateCommentRequest struct {
	TicketID      string `json:"ticket_id"`
	TicketIDAlias string `json:"ticketId"`
	Content       string `json:"content" validate:"max=1000"`
	AuthorID      string `json:"author_id"`
	UserID        string `json:"userId"`
	AuthorName    string `json:"author_name" validate:"max=100"`
	AuthorRole    string `json:"author_role" validate:"omitempty,oneof=end_user support_agent admin"`
}

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateCategoryRequest payload.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// Patch converts the request into a repository patch.
func (r UpdateCategoryRequest) Patch() repository.CategoryPatch {
	return repository.CategoryPatch{Name: r.Name, Description: r.Description, Color: r.Color}
}
