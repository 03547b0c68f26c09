package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "betlab/internal/errors"
	"betlab/internal/infrastructure"
	custommw "betlab/internal/middleware"
	"betlab/internal/services"
)

// BetHandler handles measurement HTTP requests with RFC 7807 compliance
type BetHandler struct {
	service        BetServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	validation     *custommw.ValidationMiddleware
	maxUploadBytes int64
}

// NewBetHandler creates a new measurement handler
func NewBetHandler(service BetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxUploadBytes int64) *BetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &BetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "bet_handler")),
		errorHandler:   errorHandler,
		validation:     custommw.NewValidationMiddleware(logger, errorHandler),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the measurement routes with proper Chi patterns
func (h *BetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Get("/files", h.ListFiles)

	r.Route("/files/{id}", func(r chi.Router) {
		r.Use(h.RecordCtx)
		r.Get("/", h.GetFile)
		r.Get("/report", h.DownloadReport)
		r.With(h.validation.ValidateRequest).Post("/eln", h.PushToELN)
	})

	return r
}

// RecordCtx validates the {id} parameter before the record handlers run.
func (h *BetHandler) RecordCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "id must be a positive integer"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/bet/upload. The workbook arrives as multipart
// form data under the "file" field.
func (h *BetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := infrastructure.GetTraceID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if !isWorkbook(header.Filename) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "only .xlsx and .xls workbooks are accepted"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "workbook upload",
		slog.String("request_id", reqID),
		slog.String("file_name", header.Filename),
		slog.Int("bytes", len(data)))

	result, err := h.service.ProcessUpload(ctx, header.Filename, data)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// ListFiles handles GET /api/bet/files
func (h *BetHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.service.ListFiles(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// GetFile handles GET /api/bet/files/{id}
func (h *BetHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := h.recordID(r)
	rec, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}
	render.JSON(w, r, rec)
}

// DownloadReport handles GET /api/bet/files/{id}/report and streams the
// finished PDF.
func (h *BetHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := h.recordID(r)
	artifact, err := h.service.GenerateReport(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

// elnPushRequest is the body of POST /api/bet/files/{id}/eln.
type elnPushRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

// PushToELN handles POST /api/bet/files/{id}/eln
func (h *BetHandler) PushToELN(w http.ResponseWriter, r *http.Request) {
	id := h.recordID(r)

	var req elnPushRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
		if err := h.validation.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	result, err := h.service.PushToELN(r.Context(), id, req.Title)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// recordID reads the already validated {id} parameter.
func (h *BetHandler) recordID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// mapServiceError translates service and pipeline errors into API errors.
func (h *BetHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrRecordNotFound):
		return apierrors.ErrRecordNotFound
	case errors.Is(err, services.ErrEmptyUpload):
		return apierrors.ErrValidation("file", "uploaded file is empty")
	case errors.Is(err, services.ErrELNDisabled):
		return apierrors.NewWithDetails(http.StatusConflict, "ELN_DISABLED",
			"Lab notebook integration is not configured", nil)
	case services.SheetNotFound(err):
		return apierrors.ErrSheetNotFound
	case services.InsufficientData(err):
		return apierrors.InsufficientDataError(err)
	default:
		return err
	}
}

// isWorkbook reports whether the filename looks like a spreadsheet.
func isWorkbook(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls")
}
