// FilePath: api/resources/api.resource.schedules.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/animalhaven/feederhub/internal/models"
)

// ScheduleHandlers encapsulates the feeding-schedule HTTP handlers
type ScheduleHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Set a feeding schedule
// @Description Push a schedule slot to the dispenser and mirror it locally
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path int true "Feeder ID"
// @Param schedule body models.SetScheduleRequest true "Schedule details"
// @Success 201 {object} models.FeedingSchedule
// @Failure 400 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /feeders/{id}/schedules [post]
func (h *ScheduleHandlers) SetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req models.SetScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, r, errors.NewValidationError("invalid request body", err))
		return
	}

	schedule, err := h.hubservice.SetSchedule(r.Context(), id, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, schedule)
}

// @Summary List feeding schedules
// @Tags schedules
// @Produce json
// @Param id path int true "Feeder ID"
// @Success 200 {array} models.FeedingSchedule
// @Router /feeders/{id}/schedules [get]
func (h *ScheduleHandlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	schedules, err := h.hubservice.ListSchedules(r.Context(), id)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, schedules)
}

// @Summary Delete a feeding schedule mirror
// @Tags schedules
// @Param id path int true "Schedule ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /schedules/{id} [delete]
func (h *ScheduleHandlers) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := h.hubservice.DeleteSchedule(r.Context(), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
