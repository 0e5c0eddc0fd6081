package docstore

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SeedDataset is the starter content written into a freshly created document.
// Counters are consistent with the seeded tickets and comments.
func SeedDataset() *domain.Dataset {
	at := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t
	}

	return &domain.Dataset{
		Users: []domain.User{
			{
				ID:        "admin-001",
				Name:      "QuickDesk Admin",
				Email:     "admin@quickdesk.com",
				Role:      domain.RoleAdmin,
				Status:    domain.UserStatusActive,
				CreatedAt: at("2024-01-01T00:00:00Z"),
				UpdatedAt: at("2024-01-01T00:00:00Z"),
				Profile:   domain.Profile{Phone: "+1-555-0100", Department: "Administration"},
			},
			{
				ID:        "agent-001",
				Name:      "Sarah Johnson",
				Email:     "sarah.johnson@quickdesk.com",
				Role:      domain.RoleSupportAgent,
				Status:    domain.UserStatusActive,
				CreatedAt: at("2024-01-02T08:00:00Z"),
				UpdatedAt: at("2024-01-02T08:00:00Z"),
				Profile:   domain.Profile{Phone: "+1-555-0101", Department: "Technical Support"},
			},
			{
				ID:        "user-001",
				Name:      "John Smith",
				Email:     "john.smith@example.com",
				Role:      domain.RoleEndUser,
				Status:    domain.UserStatusActive,
				CreatedAt: at("2024-01-03T10:00:00Z"),
				UpdatedAt: at("2024-01-03T10:00:00Z"),
				Profile:   domain.Profile{Phone: "+1-555-0201", Department: "Marketing"},
			},
		},
		Categories: []domain.Category{
			{ID: "cat-001", Name: "Technical Issues", Description: "Hardware, software, and system-related problems", Color: "#ef4444", TicketCount: 1, CreatedAt: at("2024-01-01T00:00:00Z")},
			{ID: "cat-002", Name: "Feature Requests", Description: "New feature suggestions and enhancements", Color: "#3b82f6", TicketCount: 1, CreatedAt: at("2024-01-01T00:00:00Z")},
			{ID: "cat-003", Name: "Bug Reports", Description: "Software bugs and unexpected behavior", Color: "#f59e0b", CreatedAt: at("2024-01-01T00:00:00Z")},
			{ID: "cat-004", Name: "Account Management", Description: "User account, billing, and subscription issues", Color: "#10b981", CreatedAt: at("2024-01-01T00:00:00Z")},
		},
		Tickets: []domain.Ticket{
			{
				ID:            "ticket-001",
				Subject:       "Login authentication failing on mobile app",
				Description:   "Users are unable to authenticate through the mobile application. The login process hangs at the authentication step and eventually times out.",
				Status:        domain.TicketStatusOpen,
				Category:      "Technical Issues",
				Priority:      domain.TicketPriorityHigh,
				CreatedBy:     "user-001",
				CreatedAt:     at("2024-01-15T09:30:00Z"),
				UpdatedAt:     at("2024-01-15T11:30:00Z"),
				Votes:         8,
				CommentsCount: 2,
				Attachments:   []string{"error-screenshot.png"},
			},
			{
				ID:          "ticket-002",
				Subject:     "Request for dark mode implementation",
				Description: "Many users have requested a dark mode option for better user experience during night-time usage.",
				Status:      domain.TicketStatusInProgress,
				Category:    "Feature Requests",
				Priority:    domain.TicketPriorityMedium,
				CreatedBy:   "user-001",
				AssignedTo:  "agent-001",
				CreatedAt:   at("2024-01-14T14:20:00Z"),
				UpdatedAt:   at("2024-01-15T10:15:00Z"),
				Votes:       15,
				Attachments: []string{},
			},
		},
		Comments: []domain.Comment{
			{
				ID:         "comment-001",
				TicketID:   "ticket-001",
				Content:    "I can reproduce this issue on both iPhone 14 and Samsung Galaxy S23. The app shows a loading spinner for about 30 seconds before timing out.",
				AuthorID:   "user-001",
				AuthorName: "John Smith",
				AuthorRole: domain.RoleEndUser,
				CreatedAt:  at("2024-01-15T10:15:00Z"),
			},
			{
				ID:         "comment-002",
				TicketID:   "ticket-001",
				Content:    "Thank you for the detailed report. I'm investigating this issue now. Can you please try clearing the app cache and let me know if the issue persists?",
				AuthorID:   "agent-001",
				AuthorName: "Sarah Johnson",
				AuthorRole: domain.RoleSupportAgent,
				CreatedAt:  at("2024-01-15T11:30:00Z"),
			},
		},
	}
}
