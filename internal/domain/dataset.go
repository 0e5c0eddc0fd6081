package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Dataset is the whole persisted document. Every write replaces it entirely
// and bumps Revision.
type Dataset struct {
	Revision   int64      `json:"revision"`
	Users      []User     `json:"users"`
	Tickets    []Ticket   `json:"tickets"`
	Comments   []Comment  `json:"comments"`
	Categories []Category `json:"categories"`
}

// EmptyDataset returns a dataset with every collection present and empty.
func EmptyDataset() *Dataset {
	return &Dataset{
		Users:      []User{},
		Tickets:    []Ticket{},
		Comments:   []Comment{},
		Categories: []Category{},
	}
}

// Normalize replaces absent collections with empty ones so callers never
// see nil slices.
func (d *Dataset) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Tickets == nil {
		d.Tickets = []Ticket{}
	}
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	for i := range d.Tickets {
		if d.Tickets[i].Attachments == nil {
			d.Tickets[i].Attachments = []string{}
		}
		if d.Tickets[i].Votes < 0 {
			d.Tickets[i].Votes = 0
		}
	}
}

// UserIndex returns the position of the user with id, or -1.
func (d *Dataset) UserIndex(id string) int {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// UserIndexByEmail matches case-insensitively.
func (d *Dataset) UserIndexByEmail(email string) int {
	email = NormalizeEmail(email)
	for i := range d.Users {
		if NormalizeEmail(d.Users[i].Email) == email {
			return i
		}
	}
	return -1
}

// TicketIndex returns the position of the ticket with id, or -1.
func (d *Dataset) TicketIndex(id string) int {
	for i := range d.Tickets {
		if d.Tickets[i].ID == id {
			return i
		}
	}
	return -1
}

// CommentIndex returns the position of the comment with id, or -1.
func (d *Dataset) CommentIndex(id string) int {
	for i := range d.Comments {
		if d.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// CategoryIndex returns the position of the category with id, or -1.
func (d *Dataset) CategoryIndex(id string) int {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// CategoryIndexByName matches case-insensitively.
func (d *Dataset) CategoryIndexByName(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return -1
	}
	for i := range d.Categories {
		if strings.ToLower(d.Categories[i].Name) == name {
			return i
		}
	}
	return -1
}

// AdjustCategoryCount moves the ticket counter of the named category by delta,
// flooring at zero. Unknown names are ignored.
func (d *Dataset) AdjustCategoryCount(name string, delta int) {
	idx := d.CategoryIndexByName(name)
	if idx < 0 {
		return
	}
	count := d.Categories[idx].TicketCount + delta
	if count < 0 {
		count = 0
	}
	d.Categories[idx].TicketCount = count
}

// Reconcile recomputes comment and category counters from the collections.
func (d *Dataset) Reconcile() {
	comments := make(map[string]int, len(d.Tickets))
	for _, c := range d.Comments {
		comments[c.TicketID]++
	}
	perCategory := make(map[string]int, len(d.Categories))
	for i := range d.Tickets {
		d.Tickets[i].CommentsCount = comments[d.Tickets[i].ID]
		perCategory[strings.ToLower(d.Tickets[i].Category)]++
	}
	for i := range d.Categories {
		d.Categories[i].TicketCount = perCategory[strings.ToLower(d.Categories[i].Name)]
	}
}

// NewID returns prefix-<ULID>. ULIDs sort by creation time.
func NewID(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

// Now is the clock used for timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
