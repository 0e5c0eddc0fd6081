package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/docstore"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

type recorder struct {
	mu    sync.Mutex
	types []events.EventType
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.Type)
	return nil
}

func (r *recorder) seen() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.EventType(nil), r.types...)
}

type env struct {
	client     *docstore.Client
	users      repository.UserRepository
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	events     *recorder

	auth      *AuthService
	ticketSvc *TicketService
	comment   *CommentService
	userSvc   *UserService
	category  *CategoryService
	dashboard *DashboardService
}

func newEnv(t *testing.T, seed bool) *env {
	t.Helper()
	client := docstore.NewClient(docstore.NewMemoryBackend(), nil, zap.NewNop(), docstore.Options{Seed: seed, RetryBase: time.Millisecond})
	_, err := client.Initialize(context.Background())
	require.NoError(t, err)

	e := &env{
		client:     client,
		users:      repository.NewUserRepository(client),
		tickets:    repository.NewTicketRepository(client),
		comments:   repository.NewCommentRepository(client),
		categories: repository.NewCategoryRepository(client),
		events:     &recorder{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketStatusChanged, events.EventTicketPriorityChanged,
		events.EventTicketAssigned, events.EventTicketDeleted, events.EventCommentAdded,
	} {
		dispatcher.Subscribe(et, e.events.handle)
	}

	e.auth = NewAuthService(AuthDependencies{UserRepo: e.users, Tokens: auth.NewTokenManager("secret", 5)})
	e.ticketSvc = NewTicketService(TicketDependencies{TicketRepo: e.tickets, UserRepo: e.users, Dispatcher: dispatcher, DefaultCategory: "Technical Issues"})
	e.comment = NewCommentService(CommentDependencies{CommentRepo: e.comments, TicketRepo: e.tickets, UserRepo: e.users, Dispatcher: dispatcher})
	e.userSvc = NewUserService(e.users)
	e.category = NewCategoryService(e.categories)
	e.dashboard = NewDashboardService(DashboardDependencies{
		UserRepo: e.users, TicketRepo: e.tickets, CommentRepo: e.comments, CategoryRepo: e.categories, Store: client,
	})
	return e
}

func statusOf(err error) int {
	return apperrors.ToDomainError(err).HTTPStatus
}

var (
	admin   = domain.Viewer{UserID: "admin-001", Role: domain.RoleAdmin}
	johnny  = domain.Viewer{UserID: "user-001", Role: domain.RoleEndUser}
	nobody  = domain.Viewer{}
	outside = domain.Viewer{UserID: "user-999", Role: domain.RoleEndUser}
)

func TestAuthenticateOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)

	var first *AuthResult
	for i := 0; i < 5; i++ {
		res, err := e.auth.AuthenticateOrCreate(ctx, "  New.Agent@Example.com ", "pw", "")
		require.NoError(t, err)
		require.NotEmpty(t, res.Token)
		if first == nil {
			first = res
		}
		assert.Equal(t, first.User.ID, res.User.ID)
	}

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "new.agent@example.com", users[0].Email)
	assert.Equal(t, "new.agent", users[0].Name)
	assert.Equal(t, domain.RoleSupportAgent, users[0].Role)

	claims, err := e.auth.TokenManager().ParseToken(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, claims.Subject)
}

func TestAuthenticateOrCreateValidation(t *testing.T) {
	e := newEnv(t, true)
	_, err := e.auth.AuthenticateOrCreate(context.Background(), "", "pw", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = e.auth.AuthenticateOrCreate(context.Background(), "a@example.com", "", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestAuthRolesFromEmail(t *testing.T) {
	e := newEnv(t, false)
	tests := map[string]domain.Role{
		"boss.admin@corp.io": domain.RoleAdmin,
		"support@corp.io":    domain.RoleSupportAgent,
		"jane@corp.io":       domain.RoleEndUser,
	}
	for email, want := range tests {
		t.Run(email, func(t *testing.T) {
			res, err := e.auth.AuthenticateOrCreate(context.Background(), email, "pw", "")
			require.NoError(t, err)
			assert.Equal(t, want, res.User.Role)
		})
	}
}

func TestBcryptLoginAndInactiveUsers(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)
	svc := NewAuthService(AuthDependencies{
		UserRepo:    e.users,
		Credentials: auth.BcryptProvider{Cost: bcrypt.MinCost},
		Tokens:      auth.NewTokenManager("secret", 5),
	})

	res, err := svc.Register(ctx, "kim@example.com", "hunter2", "Kim")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", res.User.Password)

	_, err = svc.Register(ctx, "KIM@example.com", "other", "Kim")
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = svc.AuthenticateOrCreate(ctx, "kim@example.com", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))

	_, err = svc.AuthenticateOrCreate(ctx, "kim@example.com", "hunter2", "")
	require.NoError(t, err)

	inactive := domain.UserStatusInactive
	_, err = e.users.Update(ctx, res.User.ID, repository.UserPatch{Status: &inactive})
	require.NoError(t, err)
	_, err = svc.AuthenticateOrCreate(ctx, "kim@example.com", "hunter2", "")
	assert.Equal(t, http.StatusForbidden, statusOf(err))
}

func TestTicketCreateDefaults(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	ticket, err := e.ticketSvc.Create(ctx, nobody, TicketCreateInput{
		Subject: "Cannot print", Description: "Printer offline", CreatedBy: "user-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "Technical Issues", ticket.Category)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Zero(t, ticket.Votes)
	assert.Zero(t, ticket.CommentsCount)
	assert.Contains(t, e.events.seen(), events.EventTicketCreated)

	cat, err := e.categories.GetByName(ctx, "Technical Issues")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.TicketCount)
}

func TestTicketCreateValidation(t *testing.T) {
	e := newEnv(t, true)
	tests := []struct {
		name  string
		input TicketCreateInput
	}{
		{name: "missing subject", input: TicketCreateInput{Description: "d", CreatedBy: "user-001"}},
		{name: "missing creator", input: TicketCreateInput{Subject: "s", Description: "d"}},
		{name: "bad priority", input: TicketCreateInput{Subject: "s", Description: "d", CreatedBy: "user-001", Priority: "whenever"}},
		{name: "assignee not staff", input: TicketCreateInput{Subject: "s", Description: "d", CreatedBy: "user-001", AssignedTo: "user-001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ticketSvc.Create(context.Background(), nobody, tt.input)
			assert.Equal(t, http.StatusBadRequest, statusOf(err))
		})
	}
}

func TestTicketListScoping(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	_, err := e.ticketSvc.Create(ctx, nobody, TicketCreateInput{Subject: "other", Description: "d", CreatedBy: "user-777"})
	require.NoError(t, err)

	all, err := e.ticketSvc.List(ctx, admin, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	own, err := e.ticketSvc.List(ctx, johnny, repository.TicketFilter{CreatedBy: "user-777"})
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, tk := range own {
		assert.Equal(t, "user-001", tk.CreatedBy)
	}

	_, err = e.ticketSvc.List(ctx, domain.Viewer{Role: domain.RoleEndUser}, repository.TicketFilter{})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.ticketSvc.List(ctx, admin, repository.TicketFilter{Sort: "random"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.ticketSvc.Get(ctx, outside, "ticket-001")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	got, err := e.ticketSvc.Get(ctx, johnny, "ticket-001")
	require.NoError(t, err)
	assert.Equal(t, "ticket-001", got.ID)
}

func TestTicketUpdateRules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	closed := domain.TicketStatusClosed
	ticket, err := e.ticketSvc.Update(ctx, admin, "ticket-001", repository.TicketPatch{Status: &closed})
	require.NoError(t, err)
	assert.Equal(t, closed, ticket.Status)
	assert.Contains(t, e.events.seen(), events.EventTicketStatusChanged)

	resolved := domain.TicketStatusResolved
	_, err = e.ticketSvc.Update(ctx, admin, "ticket-001", repository.TicketPatch{Status: &resolved})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	bogus := domain.TicketStatus("paused")
	_, err = e.ticketSvc.Update(ctx, admin, "ticket-001", repository.TicketPatch{Status: &bogus})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	agent := "agent-001"
	_, err = e.ticketSvc.Update(ctx, johnny, "ticket-001", repository.TicketPatch{AssignedTo: &agent})
	assert.Equal(t, http.StatusForbidden, statusOf(err))

	subject := "renamed"
	_, err = e.ticketSvc.Update(ctx, admin, "ticket-404", repository.TicketPatch{Subject: &subject})
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestTicketAssign(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	_, err := e.ticketSvc.Assign(ctx, admin, "ticket-001", "user-001")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	ticket, err := e.ticketSvc.Assign(ctx, admin, "ticket-001", "agent-001")
	require.NoError(t, err)
	assert.Equal(t, "agent-001", ticket.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	assert.Contains(t, e.events.seen(), events.EventTicketAssigned)

	ticket, err = e.ticketSvc.Assign(ctx, admin, "ticket-001", "")
	require.NoError(t, err)
	assert.Empty(t, ticket.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
}

func TestTicketVote(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, false)
	ticket, err := e.ticketSvc.Create(ctx, nobody, TicketCreateInput{Subject: "s", Description: "d", CreatedBy: "u"})
	require.NoError(t, err)

	got, err := e.ticketSvc.Vote(ctx, nobody, ticket.ID, "down")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Votes)
	got, err = e.ticketSvc.Vote(ctx, nobody, ticket.ID, "UP")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)

	_, err = e.ticketSvc.Vote(ctx, nobody, ticket.ID, "sideways")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestTicketDeleteCascadesComments(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	require.NoError(t, e.ticketSvc.Delete(ctx, admin, "ticket-001"))
	comments, err := e.comment.List(ctx, admin, "ticket-001")
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Contains(t, e.events.seen(), events.EventTicketDeleted)

	err = e.ticketSvc.Delete(ctx, admin, "ticket-001")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestCommentAdd(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	comment, err := e.comment.Add(ctx, nobody, CommentInput{TicketID: "ticket-002", Content: "On it", AuthorID: "agent-001"})
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", comment.AuthorName)
	assert.Equal(t, domain.RoleSupportAgent, comment.AuthorRole)
	assert.Contains(t, e.events.seen(), events.EventCommentAdded)

	ticket, err := e.tickets.GetByID(ctx, "ticket-002")
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.CommentsCount)

	_, err = e.comment.Add(ctx, nobody, CommentInput{TicketID: "ticket-002", AuthorID: "agent-001"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.comment.Add(ctx, nobody, CommentInput{TicketID: "ticket-002", Content: strings.Repeat("x", domain.MaxCommentLength+1), AuthorID: "agent-001"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.comment.Add(ctx, nobody, CommentInput{TicketID: "ticket-404", Content: "hi", AuthorID: "agent-001"})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	_, err = e.comment.Add(ctx, nobody, CommentInput{TicketID: "ticket-002", Content: "hi", AuthorID: "ghost"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = e.comment.Add(ctx, outside, CommentInput{TicketID: "ticket-002", Content: "hi"})
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	ticket, err = e.tickets.GetByID(ctx, "ticket-002")
	require.NoError(t, err)
	assert.Equal(t, 1, ticket.CommentsCount)
}

func TestCommentListScoping(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)
	foreign, err := e.ticketSvc.Create(ctx, nobody, TicketCreateInput{Subject: "other", Description: "d", CreatedBy: "user-777"})
	require.NoError(t, err)
	_, err = e.comment.Add(ctx, nobody, CommentInput{TicketID: foreign.ID, Content: "private", AuthorID: "agent-001"})
	require.NoError(t, err)

	_, err = e.comment.List(ctx, johnny, foreign.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	_, err = e.comment.List(ctx, johnny, "ticket-404")
	assert.Equal(t, http.StatusNotFound, statusOf(err))
	_, err = e.comment.List(ctx, domain.Viewer{Role: domain.RoleEndUser}, "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	own, err := e.comment.List(ctx, johnny, "ticket-001")
	require.NoError(t, err)
	assert.Len(t, own, 2)

	visible, err := e.comment.List(ctx, johnny, "")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, c := range visible {
		assert.Equal(t, "ticket-001", c.TicketID)
	}

	none, err := e.comment.List(ctx, outside, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := e.comment.List(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	user, err := e.userSvc.Create(ctx, UserCreateInput{Name: "Pat", Email: "pat@example.com", Role: domain.RoleSupportAgent})
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, user.Status)

	_, err = e.userSvc.Create(ctx, UserCreateInput{Name: "Pat", Email: "PAT@example.com", Role: domain.RoleEndUser})
	assert.Equal(t, http.StatusConflict, statusOf(err))

	_, err = e.userSvc.Create(ctx, UserCreateInput{Name: "Pat", Email: "p2@example.com", Role: "wizard"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	agents, err := e.userSvc.List(ctx, domain.RoleSupportAgent)
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	empty := " "
	_, err = e.userSvc.Update(ctx, user.ID, repository.UserPatch{Name: &empty})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	require.NoError(t, e.userSvc.Delete(ctx, user.ID))
	_, err = e.userSvc.Get(ctx, user.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	_, err := e.category.Create(ctx, "Network", "", "")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = e.category.Create(ctx, "Network", "Wifi and VPN", "blue")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	cat, err := e.category.Create(ctx, "Network", "Wifi and VPN", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryColor, cat.Color)

	_, err = e.category.Create(ctx, "network", "dup", "#fff")
	assert.Equal(t, http.StatusConflict, statusOf(err))

	color := "#123abc"
	updated, err := e.category.Update(ctx, cat.ID, repository.CategoryPatch{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, color, updated.Color)

	require.NoError(t, e.category.Delete(ctx, cat.ID))
	assert.Equal(t, http.StatusNotFound, statusOf(e.category.Delete(ctx, cat.ID)))
}

func TestDashboardOverview(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, true)

	overview, err := e.dashboard.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalUsers)
	assert.Equal(t, 1, overview.UsersByRole[domain.RoleAdmin])
	assert.Equal(t, 2, overview.TotalTickets)
	assert.Equal(t, 1, overview.TicketsByStatus[domain.TicketStatusOpen])
	assert.Equal(t, 1, overview.UnassignedOpen)
	assert.Equal(t, 2, overview.TotalComments)
	assert.Equal(t, 23, overview.TotalVotes)
	require.Len(t, overview.Categories, 4)
	for _, c := range overview.Categories {
		assert.Equal(t, c.LiveCount, c.TicketCount, c.Name)
	}

	status := e.dashboard.StoreStatus(ctx)
	assert.True(t, status.Available)
	assert.Equal(t, "memory", status.Backend)
	assert.Equal(t, e.client.DocumentID(), status.DocumentID)
	assert.Equal(t, 2, status.Tickets)
}

func TestTranslateStoreFailures(t *testing.T) {
	err := translate(repository.ErrStoreUnavailable, "ticket")
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(err))
	err = translate(docstore.ErrRevisionConflict, "ticket")
	assert.Equal(t, http.StatusConflict, statusOf(err))
	err = translate(fmt.Errorf("%w: field %q", docstore.ErrMalformedDocument, "users"), "ticket")
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(err))
	assert.Nil(t, translate(nil, "ticket"))
}
