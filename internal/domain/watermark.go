package domain

import "time"

// WatermarkRequest is the input of a single compositing run. Nil pointers fall
// back to the configured defaults.
type WatermarkRequest struct {
	City               string `json:"city"`
	Location           string `json:"location"`
	Camera             string `json:"camera"`
	Lens               string `json:"lens"`
	FontSize           *int   `json:"font_size,omitempty"`
	SignatureLogoWidth *int   `json:"signature_logo_width,omitempty"`
}

type Job struct {
	ID         string
	Status     JobStatus
	Request    WatermarkRequest
	ObjectPath string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Done reports whether the job reached a final status.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

const InfoTextPrefix = "SHOT ON "

const (
	DefaultConfigPath  = "config/.env"
	PathPrefixRendered = "watermarks/"
	ContentTypePNG     = "image/png"
)
