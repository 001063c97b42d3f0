package contact

import "time"

// Message mirrors the contact_messages table. PropertyID is set when the
// message was sent from a listing page.
type Message struct {
	ID         string
	Name       string
	Email      string
	Phone      *string
	Body       string
	PropertyID *string
	Handled    bool
	CreatedAt  time.Time
}

// CreateParams contains the fields accepted from the public contact form.
type CreateParams struct {
	Name       string
	Email      string
	Phone      *string
	Body       string
	PropertyID *string
}
