package upload

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/interfaces/http/common"
	uploadapp "github.com/bolsatrabajo/api/internal/upload/application"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

// multipartOverhead is allowed on top of the file size for form boundaries
// and headers.
const multipartOverhead = 64 << 10

// Handler serves and replaces stored files.
type Handler struct {
	logger     *log.Logger
	authorizer uploadapp.Authorizer
	uploads    uploadapp.UploadService
	files      uploadapp.FileStore
	maxBytes   int64
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger     *log.Logger
	Authorizer uploadapp.Authorizer
	Uploads    uploadapp.UploadService
	Files      uploadapp.FileStore
	MaxBytes   int64
}

// NewHandler constructs the upload HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:     cfg.Logger,
		authorizer: cfg.Authorizer,
		uploads:    cfg.Uploads,
		files:      cfg.Files,
		maxBytes:   cfg.MaxBytes,
	}
}

// Register mounts the upload routes behind authentication and the given
// extra middlewares (rate limiting).
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middlewares...)
		r.Use(authMiddleware)
		r.Get("/uploads/{segment}/{filename}", h.serveHandler())
		r.Post("/uploads/{segment}", h.replaceHandler())
	})
}

func kindFromRequest(r *http.Request) (uploaddomain.Kind, error) {
	kind, ok := uploaddomain.KindFromSegment(chi.URLParam(r, "segment"))
	if !ok {
		return "", apperror.NotFound(apperror.CodeNotFound)
	}
	return kind, nil
}

func callerFrom(r *http.Request) (common.Identity, error) {
	identity, ok := common.IdentityFromContext(r.Context())
	if !ok || identity.ID == "" {
		return common.Identity{}, apperror.Unauthenticated("")
	}
	return identity, nil
}

func (h *Handler) serveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindFromRequest(r)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		caller, err := callerFrom(r)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		name, err := h.authorizer.CanAccess(ctx, caller, chi.URLParam(r, "filename"), kind)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		file, err := h.files.Open(kind.Segment(), name.Name)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		defer file.Close()

		w.Header().Set("Content-Type", uploaddomain.ContentType(name.Ext))
		w.Header().Set("Cache-Control", kind.CacheControl())
		w.Header().Set("X-Content-Type-Options", "nosniff")
		// a zero modtime disables Last-Modified and If-Modified-Since
		var modified time.Time
		if kind.Cacheable() {
			modified = time.UnixMilli(name.Timestamp)
		}
		http.ServeContent(w, r, name.Name, modified, file)
	}
}

type replaceResponse struct {
	Path string `json:"path"`
}

func (h *Handler) replaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := kindFromRequest(r)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}
		caller, err := callerFrom(r)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
		file, _, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			detail := "multipart field \"file\" is required"
			if errors.As(err, &tooLarge) {
				detail = "file is too large"
			}
			common.WriteError(h.logger, w, r, apperror.Validation(apperror.CodeInvalidUpload, detail))
			return
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		stored, err := h.uploads.Replace(ctx, caller, kind, file)
		if err != nil {
			common.WriteError(h.logger, w, r, err)
			return
		}

		h.logger.Printf("upload stored kind=%s owner=%s path=%s", kind, caller.ID, stored)
		common.WriteJSON(h.logger, w, http.StatusCreated, replaceResponse{Path: stored})
	}
}
