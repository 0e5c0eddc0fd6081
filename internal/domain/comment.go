package domain

import "time"

// MaxCommentLength caps comment bodies, in characters.
const MaxCommentLength = 1000

// Comment is an immutable note on a ticket. Author fields are a snapshot
// taken when the comment was posted.
type Comment struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	Content    string    `json:"content"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	AuthorRole Role      `json:"author_role"`
	CreatedAt  time.Time `json:"created_at"`
}
