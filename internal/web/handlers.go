package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mealcal/mealcal/internal/config"
	"github.com/mealcal/mealcal/internal/errors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains HTTP route handlers for the API and the week views.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	logger   *zap.Logger
	renderer *Renderer
}

// fail writes err as a JSON error envelope, logging unexpected errors.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	writeError(w, err)
}

// failPage reports err as an HTML error page unless the client asked for JSON.
func (h *Handlers) failPage(w http.ResponseWriter, r *http.Request, err error) {
	h.logError(r, err)
	if wantsJSON(r) {
		writeError(w, err)
		return
	}

	mErr := errors.As(err)
	renderErr := h.renderer.renderPage(w, mErr.Status, "error", ErrorPageData{
		PageData:   h.renderer.page(fmt.Sprintf("Error %d", mErr.Status), ""),
		StatusCode: mErr.Status,
		Message:    mErr.Message,
	})
	if renderErr != nil {
		h.logger.Error("render error page", zap.Error(renderErr))
		http.Error(w, mErr.Message, mErr.Status)
	}
}

func (h *Handlers) logError(r *http.Request, err error) {
	mErr := errors.As(err)
	if mErr.Code != errors.ErrInternal {
		return
	}
	h.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Any("details", mErr.Details),
		zap.String("request_id", r.Header.Get(RequestIDHeader)),
	)
}

// decodeBody decodes a JSON request body into v. Malformed bodies are
// validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewValidation("request body is required")
		}
		return errors.NewValidation(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// pathID returns the {id} URL parameter.
func pathID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
