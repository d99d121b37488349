package domain

import "time"

// Attachment stores metadata for a file uploaded with a complaint.
// Attachments exist only from creation time; the update path never
// touches them.
type Attachment struct {
	ID          string
	ComplaintID string
	FileURL     string
	FileType    string
	FileName    string
	CreatedAt   time.Time
}
