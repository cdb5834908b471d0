// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/animalhaven/feederhub/api/middleware"
	"github.com/animalhaven/feederhub/internal/errors"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// formDecoder decodes form posts into the typed request structs once at the
// boundary.
var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Resources holds all HTTP resource handlers
type Resources struct {
	Feeders     *FeederHandlers
	Feedings    *FeedingHandlers
	Schedules   *ScheduleHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService) *Resources {
	return &Resources{
		Feeders:   &FeederHandlers{hubservice: svc},
		Feedings:  &FeedingHandlers{hubservice: svc},
		Schedules: &ScheduleHandlers{hubservice: svc},
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// Helper functions

// decodeForm parses the request form into dst via gorilla/schema.
func decodeForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	return formDecoder.Decode(dst, r.PostForm)
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.NewInternalError("unexpected error", err)
	}
	apiErr = apiErr.WithRequestID(middleware.GetRequestID(r.Context()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Code)
	json.NewEncoder(w).Encode(apiErr)
	nuts.L.Errorf("[API] %s", apiErr.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
