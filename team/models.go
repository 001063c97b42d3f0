package team

import "time"

// Member captures the subset of team member data exposed via the public API layer.
type Member struct {
	ID        string
	FullName  string
	RoleTitle string
	CRECI     *string
	Phone     *string
	Email     string
	PhotoURL  *string
	Active    bool
	CreatedAt time.Time
}

// CreateMemberParams contains write parameters for adding a team member.
type CreateMemberParams struct {
	FullName  string
	RoleTitle string
	CRECI     *string
	Phone     *string
	Email     string
	PhotoURL  *string
}
