package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/soochnamitra/dash-core/pkg/models/api"
	"github.com/soochnamitra/dash-core/pkg/models/domain"
)

// Service is the dashboard surface consumed by the HTTP layer.
type Service interface {
	States(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, state string) ([]string, error)
	Dashboard(ctx context.Context, state, district string, months int) (*api.Dashboard, error)
	Locate(ctx context.Context, coords domain.Coordinates) (*api.LocateResponse, error)
	Refresh(ctx context.Context) error
	Health(ctx context.Context) error
	DefaultMonths() int
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	states, err := h.service.States(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, api.StatesResponse{States: states})
}

func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := chi.URLParam(r, "state")

	districts, err := h.service.Districts(ctx, state)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, api.DistrictsResponse{State: state, Districts: districts})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := r.URL.Query().Get("state")
	district := r.URL.Query().Get("district")

	months := h.service.DefaultMonths()
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, &domain.ValidationError{Field: "months", Reason: "must be an integer"})
			return
		}
		months = parsed
	}

	view, err := h.service.Dashboard(ctx, state, district, months)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, view)
}

func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	resp, err := h.service.Locate(ctx, domain.Coordinates{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, resp)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Refresh(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Health reports "degraded" rather than failing when the upstream data
// service is unreachable: the process itself is still serving.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "ok"
	if err := h.service.Health(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("upstream health probe failed")
		status = "degraded"
	}
	writeJSON(ctx, w, api.HealthResponse{
		Status: status,
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)

	status := http.StatusInternalServerError
	var verr *domain.ValidationError
	var terr *domain.TransportError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.As(err, &terr):
		status = http.StatusBadGateway
	}

	logger.Error().Err(err).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(api.ErrorResponse{Error: err.Error()}); encodeErr != nil {
		logger.Error().Err(encodeErr).Msg("failed to encode error response")
	}
}
