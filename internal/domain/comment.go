package domain

import "time"

// Comment captures a note in a ticket thread. Internal comments are
// visible to staff only.
type Comment struct {
	ID          string
	TicketID    string
	Text        string
	IsInternal  bool
	AuthorName  string
	AuthorEmail string
	CreatedAt   time.Time
}

// Attachment stores metadata for a file linked to a ticket.
type Attachment struct {
	ID         string
	TicketID   string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	UploadedBy string
	CreatedAt  time.Time
}
