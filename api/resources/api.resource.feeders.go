// FilePath: api/resources/api.resource.feeders.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/animalhaven/feederhub/internal/models"
	"github.com/gorilla/mux"
)

// FeederHandlers encapsulates the feeder-related HTTP handlers
type FeederHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List active feeders
// @Description List active feeder modules, probing each one and refreshing its online state
// @Tags feeders
// @Produce json
// @Success 200 {array} models.FeederModule
// @Router /feeders [get]
func (h *FeederHandlers) ListFeeders(w http.ResponseWriter, r *http.Request) {
	feeders, err := h.hubservice.ListActiveFeeders(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, feeders)
}

// @Summary Register a feeder
// @Description Register a new feeder module by name and device address
// @Tags feeders
// @Accept json
// @Produce json
// @Param feeder body models.RegisterFeederRequest true "Feeder details"
// @Success 201 {object} models.FeederModule
// @Failure 400 {object} errors.APIError
// @Router /feeders [post]
func (h *FeederHandlers) RegisterFeeder(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterFeederRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}

	feeder, err := h.hubservice.RegisterFeeder(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, feeder)
}

// @Summary Deactivate a feeder
// @Description Soft-delete a feeder module, keeping its feeding history
// @Tags feeders
// @Produce json
// @Param id path int true "Feeder ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /feeders/{id} [delete]
func (h *FeederHandlers) DeactivateFeeder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := h.hubservice.DeactivateFeeder(r.Context(), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Get live feeder status
// @Description Proxy the dispenser's live status payload for display
// @Tags feeders
// @Produce json
// @Param id path int true "Feeder ID"
// @Success 200 {object} models.DeviceStatus
// @Failure 404 {object} errors.APIError
// @Router /feeders/{id}/status [get]
func (h *FeederHandlers) GetFeederStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	status, err := h.hubservice.LiveStatus(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// pathID parses a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("invalid "+name, err)
	}
	return id, nil
}
