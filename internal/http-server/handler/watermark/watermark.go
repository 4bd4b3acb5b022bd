package watermark

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"watermark-generator/internal/domain"
	"watermark-generator/internal/http-server/handler/watermark/dto"
	repoWatermark "watermark-generator/internal/repository/watermark"
	watermark_uc "watermark-generator/internal/usecase/watermark"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

const maxBodySize = 1 << 20

type WatermarkHandler struct {
	watermarks watermarkUsecase
	jobs       jobUsecase
	validate   *validator.Validate
	logger     *zlog.Zerolog
}

func NewWatermarkHandler(watermarks watermarkUsecase, jobs jobUsecase, logger *zlog.Zerolog) *WatermarkHandler {
	return &WatermarkHandler{
		watermarks: watermarks,
		jobs:       jobs,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Render composes a watermark synchronously and returns it as PNG.
func (h *WatermarkHandler) Render(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	data, err := h.watermarks.Render(r.Context(), req.ToDomain())
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", domain.ContentTypePNG)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write watermark")
	}
}

func (h *WatermarkHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(w, r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	job, err := h.jobs.Submit(r.Context(), req.ToDomain())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.logger.Info().Str("job_id", job.ID).Msg("Watermark job accepted")
	h.respondJSON(w, http.StatusAccepted, dto.NewJobResponse(job))
}

func (h *WatermarkHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *WatermarkHandler) GetJobImage(w http.ResponseWriter, r *http.Request) {
	id, err := jobID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	reader, err := h.jobs.GetJobImage(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", domain.ContentTypePNG)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s.png\"", id))
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error().Err(err).Str("job_id", id).Msg("Failed to stream watermark")
	}
}

func (h *WatermarkHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*dto.WatermarkRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req dto.WatermarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}

	if err := h.validate.Struct(&req); err != nil {
		return nil, err
	}

	return &req, nil
}

func jobID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobID, id)
	}
	return id, nil
}

func (h *WatermarkHandler) handleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, ErrInvalidBody):
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
	case errors.Is(err, ErrInvalidJobID):
		h.respondError(w, http.StatusBadRequest, "Invalid job ID", nil)
	case errors.Is(err, watermark_uc.ErrJobNotFound):
		h.respondError(w, http.StatusNotFound, "Job not found", nil)
	case errors.Is(err, repoWatermark.ErrFileNotFound):
		h.respondError(w, http.StatusNotFound, "Rendered image not found", nil)
	case errors.Is(err, watermark_uc.ErrImageNotReady):
		h.respondError(w, http.StatusConflict, "Job is not completed", err)
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrFileProcessing):
		h.logger.Error().Err(err).Str("kind", domain.ErrorKind(err)).Msg("Watermark service misconfigured")
		h.respondError(w, http.StatusInternalServerError, "Watermark service unavailable", err)
	case errors.Is(err, domain.ErrImageProcessing):
		h.respondError(w, http.StatusUnprocessableEntity, "Failed to compose watermark", err)
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		h.respondError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func (h *WatermarkHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Interface("data", data).Msg("Failed to encode response")
	}
}

func (h *WatermarkHandler) respondError(w http.ResponseWriter, status int, message string, err error) {
	response := dto.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	}

	if err != nil {
		response.Details = err.Error()
		if kind := domain.ErrorKind(err); kind != domain.KindUnknown {
			response.Kind = kind
		}
	}

	h.respondJSON(w, status, response)
}
