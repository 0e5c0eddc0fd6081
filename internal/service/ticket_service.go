package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Vote directions.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets         repository.TicketRepository
	users           repository.UserRepository
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	defaultCategory string
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	UserRepo        repository.UserRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	DefaultCategory string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Description string
	Category    string
	Priority    domain.TicketPriority
	CreatedBy   string
	AssignedTo  string
	Attachments []string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	category := strings.TrimSpace(deps.DefaultCategory)
	if category == "" {
		category = "Technical Issues"
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		users:           deps.UserRepo,
		dispatcher:      deps.Dispatcher,
		logger:          loggerOrNop(deps.Logger),
		defaultCategory: category,
	}
}

// Create opens a ticket. Category and priority fall back to the configured
// defaults; status, votes and comment count always start fresh.
func (s *TicketService) Create(ctx context.Context, viewer domain.Viewer, input TicketCreateInput) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    input.Priority,
		CreatedBy:   strings.TrimSpace(input.CreatedBy),
		AssignedTo:  strings.TrimSpace(input.AssignedTo),
		Status:      domain.TicketStatusOpen,
		Attachments: input.Attachments,
	}
	if viewer.Scoped() && viewer.UserID != "" {
		ticket.CreatedBy = viewer.UserID
	}
	if err := required(map[string]string{
		"subject":     ticket.Subject,
		"description": ticket.Description,
		"created_by":  ticket.CreatedBy,
	}); err != nil {
		return nil, err
	}
	if ticket.Category == "" {
		ticket.Category = s.defaultCategory
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": ticket.Priority})
	}
	if ticket.AssignedTo != "" {
		if err := s.ensureAssignable(ctx, ticket.AssignedTo); err != nil {
			return nil, err
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, translate(err, "ticket")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketCreated, ticket.ID, actorFromViewer(viewer), events.TicketCreatedPayload{
		Category: ticket.Category,
		Priority: ticket.Priority,
		Subject:  ticket.Subject,
	}))
	return ticket, nil
}

// List returns tickets matching filter. End users only ever see tickets
// they created, whatever the filter asks for.
func (s *TicketService) List(ctx context.Context, viewer domain.Viewer, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if err := checkViewer(viewer); err != nil {
		return nil, err
	}
	if viewer.Scoped() {
		filter.CreatedBy = viewer.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status filter", map[string]any{"status": filter.Status})
	}
	switch filter.Sort {
	case "", repository.SortNewest, repository.SortOldest, repository.SortVotes, repository.SortComments:
	default:
		return nil, apperrors.NewValidationError("invalid sort order", map[string]any{"sort": filter.Sort})
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	return tickets, nil
}

// Get returns one ticket. Tickets an end user does not own read as missing.
func (s *TicketService) Get(ctx context.Context, viewer domain.Viewer, id string) (*domain.Ticket, error) {
	if err := checkViewer(viewer); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	if !viewer.Owns(ticket) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// Update applies patch. End users may only edit their own tickets and may
// not reassign them or set vote counts directly.
func (s *TicketService) Update(ctx context.Context, viewer domain.Viewer, id string, patch repository.TicketPatch) (*domain.Ticket, error) {
	before, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if viewer.Scoped() && (patch.AssignedTo != nil || patch.Votes != nil) {
		return nil, apperrors.NewForbidden("end users cannot assign tickets or set votes")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.Subject != nil && strings.TrimSpace(*patch.Subject) == "" {
		return nil, apperrors.NewValidationError("subject cannot be empty", nil)
	}
	if patch.AssignedTo != nil && *patch.AssignedTo != "" {
		if err := s.ensureAssignable(ctx, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	after, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	s.publishChanges(ctx, viewer, before, after)
	return after, nil
}

// Vote moves the vote count by one. Downvotes stop at zero.
func (s *TicketService) Vote(ctx context.Context, viewer domain.Viewer, id, direction string) (*domain.Ticket, error) {
	var delta int
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case VoteUp:
		delta = 1
	case VoteDown:
		delta = -1
	default:
		return nil, apperrors.NewValidationError("direction must be up or down", map[string]any{"direction": direction})
	}
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.AdjustVotes(ctx, id, delta)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	return ticket, nil
}

// Assign hands the ticket to an agent or admin; an empty assignee clears it.
// Open tickets move to in_progress when assigned.
func (s *TicketService) Assign(ctx context.Context, viewer domain.Viewer, id, assigneeID string) (*domain.Ticket, error) {
	assigneeID = strings.TrimSpace(assigneeID)
	patch := repository.TicketPatch{AssignedTo: &assigneeID}

	before, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if assigneeID != "" {
		if err := s.ensureAssignable(ctx, assigneeID); err != nil {
			return nil, err
		}
		if before.Status == domain.TicketStatusOpen {
			inProgress := domain.TicketStatusInProgress
			patch.Status = &inProgress
		}
	}

	after, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	s.publishChanges(ctx, viewer, before, after)
	return after, nil
}

// Delete removes the ticket and its comments.
func (s *TicketService) Delete(ctx context.Context, viewer domain.Viewer, id string) error {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return translate(err, "ticket")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketDeleted, id, actorFromViewer(viewer), nil))
	return nil
}

func (s *TicketService) ensureAssignable(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewValidationError("assignee does not exist", map[string]any{"assigned_to": userID})
	}
	if err != nil {
		return translate(err, "user")
	}
	if !user.Role.IsStaff() {
		return apperrors.NewValidationError("assignee must be a support agent or admin", map[string]any{"assigned_to": userID})
	}
	return nil
}

func (s *TicketService) publishChanges(ctx context.Context, viewer domain.Viewer, before, after *domain.Ticket) {
	actor := actorFromViewer(viewer)
	if before.Status != after.Status {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketStatusChanged, after.ID, actor, events.TicketStatusChangedPayload{
			OldStatus: before.Status,
			NewStatus: after.Status,
		}))
	}
	if before.Priority != after.Priority {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketPriorityChanged, after.ID, actor, events.TicketPriorityChangedPayload{
			OldPriority: before.Priority,
			NewPriority: after.Priority,
		}))
	}
	if before.AssignedTo != after.AssignedTo {
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventTicketAssigned, after.ID, actor, events.TicketAssignedPayload{
			OldAssignee: before.AssignedTo,
			NewAssignee: after.AssignedTo,
		}))
	}
}

func checkViewer(viewer domain.Viewer) error {
	if viewer.Role != "" && !viewer.Role.Valid() {
		return apperrors.NewValidationError("invalid role", map[string]any{"role": viewer.Role})
	}
	if viewer.Scoped() && viewer.UserID == "" {
		return apperrors.NewValidationError("userId is required for end users", nil)
	}
	return nil
}
