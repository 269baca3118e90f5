package domain

import (
	"time"
)

type JobMode string

const (
	JobModeWebpage JobMode = "webpage"
	JobModeVideo   JobMode = "video"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether moving from s to next is a legal step of the
// job lifecycle: pending -> processing -> completed | failed.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// Job is one capture attempt. Jobs live only in the in-memory registry; they
// are never persisted.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Mode      JobMode   `json:"mode"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Flags     []string  `json:"flags,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	MaxRes    string    `json:"max_res,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is the metadata record of a captured artifact.
type Page struct {
	ID          int64    `json:"id" db:"id"`
	Title       string   `json:"title" db:"title"`
	URL         string   `json:"url" db:"url"`
	Filename    string   `json:"filename" db:"filename"`
	Size        int64    `json:"size" db:"size"`
	IsMedia     bool     `json:"is_media" db:"is_media"`
	CreatedTime string   `json:"created_time,omitempty" db:"created_time"`
	Tags        []string `json:"tags"`
}

// PartialPage carries the fields a page insert needs.
type PartialPage struct {
	Title    string
	URL      string
	Filename string
	Size     int64
	IsMedia  bool
}

// PageCache is the denormalized homepage snapshot. Valid only while the
// archive directory's modification time matches the stored modified_time.
type PageCache struct {
	Pages []Page `json:"pages"`
	Size  int64  `json:"size"`
}

// Session is an opaque authentication token row.
type Session struct {
	Token     string `db:"token"`
	ExpiresAt int64  `db:"expires_at"`
}
