package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/ishtml5-service/internal/delivery/http/request"
	"github.com/user/ishtml5-service/internal/delivery/http/response"
	"github.com/user/ishtml5-service/internal/repository"
	"github.com/user/ishtml5-service/internal/usecase"
)

type Handler struct {
	resolver usecase.DoctypeResolver
	backend  string
	pinger   repository.Pinger
	logger   *zap.Logger
}

// NewHandler wires the resolver. pinger may be nil for backends without a
// remote connection; backend names the cache in health responses.
func NewHandler(resolver usecase.DoctypeResolver, backend string, pinger repository.Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		backend:  backend,
		pinger:   pinger,
		logger:   logger,
	}
}

// HandleIsHTML5 answers whether the document at the url parameter declares an
// HTML5 doctype. GET reads the query string only; POST falls back to a JSON
// body when the query carries no url.
func (h *Handler) HandleIsHTML5(w http.ResponseWriter, r *http.Request) {
	raw, ok := request.URLFromQuery(r.URL.RawQuery)
	if !ok && r.Method == http.MethodPost {
		raw, ok = request.URLFromBody(r.Body)
	}

	u, err := usecase.ValidateURL(raw, ok)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	isHTML5, err := h.resolver.Resolve(r.Context(), u)
	if err != nil {
		h.writeResolveError(w, u.Canonical, err)
		return
	}

	h.writeJSON(w, http.StatusOK, isHTML5)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Cache: "healthy", Backend: h.backend}

	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Error("health check failed for cache", zap.String("backend", h.backend), zap.Error(err))
			resp.Cache = "unhealthy"
			h.writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	if errors.Is(err, usecase.ErrMissingParameter) {
		h.writeText(w, http.StatusBadRequest, response.MissingURLMessage)
		return
	}
	h.writeText(w, http.StatusBadRequest, response.InvalidURLMessage)
}

func (h *Handler) writeResolveError(w http.ResponseWriter, url string, err error) {
	var fetchErr *repository.FetchError
	if errors.As(err, &fetchErr) {
		h.logger.Error("Failed to fetch document", zap.String("url", url), zap.Int("status_code", fetchErr.StatusCode), zap.Error(err))
		h.writeText(w, http.StatusBadGateway, response.FetchFailedMessage)
		return
	}
	h.logger.Error("Failed to resolve doctype", zap.String("url", url), zap.Error(err))
	h.writeText(w, http.StatusInternalServerError, response.InternalMessage)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
		h.writeText(w, http.StatusInternalServerError, response.InternalMessage)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
