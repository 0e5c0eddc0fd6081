package domain

// Viewer identifies who a read is performed for. An empty ID with an
// end-user role cannot be scoped and is rejected by services.
type Viewer struct {
	UserID string
	Role   Role
}

// Scoped reports whether reads must be restricted to the viewer's own records.
func (v Viewer) Scoped() bool {
	return v.Role == RoleEndUser
}

// Owns reports whether the viewer may see a ticket.
func (v Viewer) Owns(ticket *Ticket) bool {
	if !v.Scoped() {
		return true
	}
	return ticket != nil && v.UserID != "" && ticket.CreatedBy == v.UserID
}
