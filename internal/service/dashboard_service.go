package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/helpdesk/internal/docstore"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// Overview summarises the help desk for administrators.
type Overview struct {
	TotalUsers        int                           `json:"total_users"`
	ActiveUsers       int                           `json:"active_users"`
	UsersByRole       map[domain.Role]int           `json:"users_by_role"`
	TotalTickets      int                           `json:"total_tickets"`
	TicketsByStatus   map[domain.TicketStatus]int   `json:"tickets_by_status"`
	TicketsByPriority map[domain.TicketPriority]int `json:"tickets_by_priority"`
	UnassignedOpen    int                           `json:"unassigned_open"`
	TotalComments     int                           `json:"total_comments"`
	TotalVotes        int                           `json:"total_votes"`
	Categories        []CategoryStat                `json:"categories"`
	GeneratedAt       time.Time                     `json:"generated_at"`
}

// CategoryStat compares the stored counter with a live count.
type CategoryStat struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	TicketCount int    `json:"ticket_count"`
	LiveCount   int    `json:"live_count"`
}

// StoreStatus describes the document the service is bound to.
type StoreStatus struct {
	Backend    string `json:"backend"`
	DocumentID string `json:"document_id"`
	Available  bool   `json:"available"`
	Revision   int64  `json:"revision"`
	Users      int    `json:"users"`
	Tickets    int    `json:"tickets"`
	Comments   int    `json:"comments"`
	Categories int    `json:"categories"`
	Error      string `json:"error,omitempty"`
}

// StoreInspector is the diagnostic view of the document client.
type StoreInspector interface {
	DocumentID() string
	BackendName() string
	GetData(ctx context.Context) docstore.ReadResult
}

// DashboardService aggregates read-only statistics.
type DashboardService struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	store      StoreInspector
}

// DashboardDependencies bundles repositories for the dashboard.
type DashboardDependencies struct {
	UserRepo     repository.UserRepository
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	Store        StoreInspector
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		store:      deps.Store,
	}
}

// Overview loads every collection concurrently and aggregates them.
func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	var (
		users      []domain.User
		tickets    []domain.Ticket
		comments   []domain.Comment
		categories []domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.users.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		tickets, err = s.tickets.List(gctx, repository.TicketFilter{})
		return err
	})
	g.Go(func() (err error) {
		comments, err = s.comments.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.categories.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translate(err, "overview")
	}

	overview := &Overview{
		TotalUsers:        len(users),
		UsersByRole:       map[domain.Role]int{},
		TotalTickets:      len(tickets),
		TicketsByStatus:   map[domain.TicketStatus]int{},
		TicketsByPriority: map[domain.TicketPriority]int{},
		TotalComments:     len(comments),
		Categories:        make([]CategoryStat, 0, len(categories)),
		GeneratedAt:       domain.Now(),
	}
	for _, u := range users {
		overview.UsersByRole[u.Role]++
		if u.Status != domain.UserStatusInactive {
			overview.ActiveUsers++
		}
	}
	live := map[string]int{}
	for _, t := range tickets {
		overview.TicketsByStatus[t.Status]++
		overview.TicketsByPriority[t.Priority]++
		overview.TotalVotes += t.Votes
		if t.Status == domain.TicketStatusOpen && t.AssignedTo == "" {
			overview.UnassignedOpen++
		}
		live[strings.ToLower(t.Category)]++
	}
	for _, c := range categories {
		overview.Categories = append(overview.Categories, CategoryStat{
			ID:          c.ID,
			Name:        c.Name,
			Color:       c.Color,
			TicketCount: c.TicketCount,
			LiveCount:   live[strings.ToLower(c.Name)],
		})
	}
	return overview, nil
}

// StoreStatus reports which document is in use and whether it is readable.
func (s *DashboardService) StoreStatus(ctx context.Context) StoreStatus {
	result := s.store.GetData(ctx)
	status := StoreStatus{
		Backend:    s.store.BackendName(),
		DocumentID: s.store.DocumentID(),
		Available:  result.Available(),
		Revision:   result.Data.Revision,
		Users:      len(result.Data.Users),
		Tickets:    len(result.Data.Tickets),
		Comments:   len(result.Data.Comments),
		Categories: len(result.Data.Categories),
	}
	if result.Err != nil {
		status.Error = result.Err.Error()
	}
	return status
}
