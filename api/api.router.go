// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/animalhaven/feederhub/api/middleware"
	"github.com/animalhaven/feederhub/api/resources"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

// SetHealthCheck installs the health handler served on /api/v1/health.
func (r *Router) SetHealthCheck(h func(w http.ResponseWriter, req *http.Request)) {
	r.resources.SetHealthCheck(h)
}

func (r *Router) setupRoutes() {
	r.router.Use(middleware.RequestID)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		if r.resources.HealthCheck != nil {
			r.resources.HealthCheck(w, req)
			return
		}
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// Feeders
	feeders := api.PathPrefix("/feeders").Subrouter()
	feeders.HandleFunc("", r.resources.Feeders.ListFeeders).Methods(http.MethodGet)
	feeders.HandleFunc("", r.resources.Feeders.RegisterFeeder).Methods(http.MethodPost)
	feeders.HandleFunc("/{id}", r.resources.Feeders.DeactivateFeeder).Methods(http.MethodDelete)
	feeders.HandleFunc("/{id}/status", r.resources.Feeders.GetFeederStatus).Methods(http.MethodGet)
	feeders.HandleFunc("/{id}/feed", r.resources.Feedings.TriggerFeeding).Methods(http.MethodPost)
	feeders.HandleFunc("/{id}/capture", r.resources.Feedings.RequestSecondCapture).Methods(http.MethodPost)
	feeders.HandleFunc("/{id}/totals/{date}", r.resources.Feedings.DailyTotals).Methods(http.MethodGet)
	feeders.HandleFunc("/{id}/schedules", r.resources.Schedules.ListSchedules).Methods(http.MethodGet)
	feeders.HandleFunc("/{id}/schedules", r.resources.Schedules.SetSchedule).Methods(http.MethodPost)

	// Feeding log
	feedings := api.PathPrefix("/feedings").Subrouter()
	feedings.HandleFunc("", r.resources.Feedings.ListEvents).Methods(http.MethodGet)
	feedings.HandleFunc("", r.resources.Feedings.RecordEvent).Methods(http.MethodPost)
	feedings.HandleFunc("", r.resources.Feedings.DeleteAllEvents).Methods(http.MethodDelete)
	feedings.HandleFunc("/{id}", r.resources.Feedings.DeleteEvent).Methods(http.MethodDelete)

	// Schedules
	api.HandleFunc("/schedules/{id}", r.resources.Schedules.DeleteSchedule).Methods(http.MethodDelete)

	// Photo ingestion (camera firmware posts raw bytes here)
	api.HandleFunc("/photos", r.resources.Feedings.UploadPhoto).Methods(http.MethodPost)
	api.HandleFunc("/photos/{name}", r.resources.Feedings.GetPhoto).Methods(http.MethodGet)

	// Settings
	api.HandleFunc("/settings/dispense-amount", r.resources.Feedings.GetDispenseAmount).Methods(http.MethodGet)
	api.HandleFunc("/settings/dispense-amount", r.resources.Feedings.SetDispenseAmount).Methods(http.MethodPut)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
