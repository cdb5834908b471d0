// FilePath: api/resources/api.resource.feedings.go
package resources

import (
	"io"
	"net/http"
	"strconv"

	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/animalhaven/feederhub/internal/models"
	"github.com/gorilla/mux"
)

// FeedingHandlers encapsulates the feeding log and dispense HTTP handlers
type FeedingHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Trigger a feeding
// @Description Probe the feeder, send the dispense command and record the event
// @Tags feedings
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path int true "Feeder ID"
// @Param amount formData number false "Amount in grams"
// @Param source formData string false "Trigger source label"
// @Success 200 {object} models.FeedingEvent
// @Failure 404 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /feeders/{id}/feed [post]
func (h *FeedingHandlers) TriggerFeeding(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req models.TriggerFeedingRequest
	if err := decodeForm(r, &req); err != nil {
		respondWithError(w, r, errors.NewValidationError("invalid form payload", err))
		return
	}
	if req.Amount <= 0 {
		req.Amount = h.hubservice.DefaultDispenseAmount(r.Context())
	}

	event, err := h.hubservice.TriggerFeeding(r.Context(), id, &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, event)
}

// @Summary Record a feeding event
// @Description Append a feeding or sensor report, typically posted by device firmware
// @Tags feedings
// @Accept x-www-form-urlencoded
// @Produce json
// @Success 201 {object} models.FeedingEvent
// @Router /feedings [post]
func (h *FeedingHandlers) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req models.RecordEventRequest
	if err := decodeForm(r, &req); err != nil {
		respondWithError(w, r, errors.NewValidationError("invalid form payload", err))
		return
	}

	event, err := h.hubservice.RecordEvent(r.Context(), &req)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, event)
}

// @Summary List recent feeding events
// @Tags feedings
// @Produce json
// @Param limit query int false "Maximum rows, default 100"
// @Success 200 {array} models.FeedingEvent
// @Router /feedings [get]
func (h *FeedingHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.hubservice.ListRecentEvents(r.Context(), limit)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// @Summary Delete one feeding event
// @Tags feedings
// @Param id path int true "Event ID"
// @Success 204 "No Content"
// @Failure 404 {object} errors.APIError
// @Router /feedings/{id} [delete]
func (h *FeedingHandlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := h.hubservice.DeleteEvent(r.Context(), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Delete all feeding events
// @Tags feedings
// @Success 204 "No Content"
// @Router /feedings [delete]
func (h *FeedingHandlers) DeleteAllEvents(w http.ResponseWriter, r *http.Request) {
	if err := h.hubservice.DeleteAllEvents(r.Context()); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Daily feeding totals
// @Description Stored feeding count plus live-recomputed dispensed sum for one date
// @Tags feedings
// @Produce json
// @Param id path int true "Feeder ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.DailyTotals
// @Router /feeders/{id}/totals/{date} [get]
func (h *FeedingHandlers) DailyTotals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	date := mux.Vars(r)["date"]

	totals, err := h.hubservice.DailyTotals(r.Context(), id, date)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, totals)
}

// @Summary Ingest a feeding photo
// @Description Store a raw image body and back-fill it onto the matching event.
// @Description The X-Feeding-ID header carries the correlation token; X-Capture-Type
// @Description the capture sequence number.
// @Tags photos
// @Accept octet-stream
// @Success 201 {object} map[string]string
// @Router /photos [post]
func (h *FeedingHandlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, r, errors.NewValidationError("failed to read image body", err))
		return
	}

	feedingID := r.Header.Get("X-Feeding-ID")
	captureSeq, err := strconv.Atoi(r.Header.Get("X-Capture-Type"))
	if err != nil || captureSeq < 1 {
		captureSeq = 1
	}

	path, err := h.hubservice.IngestPhoto(r.Context(), feedingID, captureSeq, data)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"image_path": path})
}

// @Summary Fetch a stored feeding photo
// @Tags photos
// @Produce jpeg
// @Param name path string true "Photo file name"
// @Success 200 {file} binary
// @Router /photos/{name} [get]
func (h *FeedingHandlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	w.Header().Set("Content-Type", "image/jpeg")
	if err := h.hubservice.StreamPhoto(r.Context(), name, w); err != nil {
		respondWithError(w, r, err)
		return
	}
}

// @Summary Request a second capture
// @Description Schedule another delayed camera capture for a feeder
// @Tags photos
// @Param id path int true "Feeder ID"
// @Success 202 "Accepted"
// @Router /feeders/{id}/capture [post]
func (h *FeedingHandlers) RequestSecondCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if err := h.hubservice.RequestSecondCapture(r.Context(), id); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// @Summary Get the default dispense amount
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]float64
// @Router /settings/dispense-amount [get]
func (h *FeedingHandlers) GetDispenseAmount(w http.ResponseWriter, r *http.Request) {
	amount := h.hubservice.DefaultDispenseAmount(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]float64{"amount": amount})
}

// @Summary Set the default dispense amount
// @Tags settings
// @Accept x-www-form-urlencoded
// @Param amount formData number true "Amount in grams"
// @Success 204 "No Content"
// @Router /settings/dispense-amount [put]
func (h *FeedingHandlers) SetDispenseAmount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `schema:"amount"`
	}
	if err := decodeForm(r, &req); err != nil {
		respondWithError(w, r, errors.NewValidationError("invalid form payload", err))
		return
	}

	if err := h.hubservice.SetDefaultDispenseAmount(r.Context(), req.Amount); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
