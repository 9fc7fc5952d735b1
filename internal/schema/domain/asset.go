package domain

import "time"

// Asset is the read model of a stored binary; upload and thumbnailing live
// outside this service.
type Asset struct {
	ID        int64
	UUID      string
	FileName  string
	MimeType  string
	SizeBytes int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
