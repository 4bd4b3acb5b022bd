package dto

import (
	"time"

	"watermark-generator/internal/domain"
)

type WatermarkRequest struct {
	City               string `json:"city" validate:"required,max=128"`
	Location           string `json:"location" validate:"required,max=128"`
	Camera             string `json:"camera" validate:"required,max=128"`
	Lens               string `json:"lens" validate:"required,max=128"`
	FontSize           *int   `json:"font_size,omitempty" validate:"omitempty,gt=0,lte=1000"`
	SignatureLogoWidth *int   `json:"signature_logo_width,omitempty" validate:"omitempty,gt=0,lte=10000"`
}

func (r WatermarkRequest) ToDomain() domain.WatermarkRequest {
	return domain.WatermarkRequest{
		City:               r.City,
		Location:           r.Location,
		Camera:             r.Camera,
		Lens:               r.Lens,
		FontSize:           r.FontSize,
		SignatureLogoWidth: r.SignatureLogoWidth,
	}
}

type JobResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewJobResponse(job *domain.Job) JobResponse {
	resp := JobResponse{
		ID:        job.ID,
		Status:    string(job.Status),
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == domain.StatusCompleted {
		resp.ImageURL = "/api/watermarks/jobs/" + job.ID + "/image"
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}
