// FilePath: internal/models/api.models.requests.go
package models

// Typed request payloads for the write operations, decoded once at the
// boundary (gorilla/schema for form posts, encoding/json for JSON bodies).
// Optional fields carry their documented defaults via ApplyDefaults.

const (
	DefaultLocation      = "Main Area"
	DefaultCapacityGrams = 5000
	DefaultFeedAmount    = 50
	DefaultSource        = "Dashboard"
	DefaultDeviceSource  = "ESP32"
)

// RegisterFeederRequest registers a new feeder module. Camera is the optional
// address of the attached camera unit; without it the module dispenses but
// never takes feeding photos.
type RegisterFeederRequest struct {
	Name     string `json:"name" schema:"name"`
	Address  string `json:"ip_address" schema:"ip_address"`
	Camera   string `json:"camera_ip" schema:"camera_ip"`
	Location string `json:"location" schema:"location"`
	Capacity int    `json:"max_capacity_g" schema:"max_capacity_g"`
}

func (r *RegisterFeederRequest) ApplyDefaults() {
	if r.Location == "" {
		r.Location = DefaultLocation
	}
	if r.Capacity <= 0 {
		r.Capacity = DefaultCapacityGrams
	}
}

// TriggerFeedingRequest asks the hub to dispense on a feeder.
type TriggerFeedingRequest struct {
	Source string  `json:"source" schema:"source"`
	Amount float64 `json:"amount" schema:"amount"`
}

func (r *TriggerFeedingRequest) ApplyDefaults() {
	if r.Source == "" {
		r.Source = DefaultSource
	}
	if r.Amount <= 0 {
		r.Amount = DefaultFeedAmount
	}
}

// RecordEventRequest is a feeding or sensor report, typically posted by the
// dispenser firmware after a button feed or a scheduled feed fired on-device.
type RecordEventRequest struct {
	FeederID  int64   `json:"feeder_id" schema:"feeder_id"`
	Source    string  `json:"source" schema:"source"`
	Weight    float64 `json:"weight" schema:"weight"`
	Amount    float64 `json:"amount" schema:"amount"`
	Event     string  `json:"event" schema:"event"`
	FeedType  string  `json:"feed_type" schema:"feed_type"`
	FeedingID string  `json:"feeding_id" schema:"feeding_id"`
}

func (r *RecordEventRequest) ApplyDefaults() {
	if r.FeederID <= 0 {
		r.FeederID = 1
	}
	if r.Source == "" {
		r.Source = DefaultDeviceSource
	}
	if r.Event == "" {
		r.Event = string(UnknownEvent)
	}
}

// SetScheduleRequest creates a schedule slot and pushes it to the device.
type SetScheduleRequest struct {
	Name        string  `json:"schedule_name" schema:"schedule_name"`
	Hour        int     `json:"hour" schema:"hour"`
	Minute      int     `json:"minute" schema:"minute"`
	AmountGrams float64 `json:"amount_g" schema:"amount_g"`
	Days        []int   `json:"days_of_week" schema:"days_of_week"`
	Enabled     *bool   `json:"is_enabled" schema:"is_enabled"`
}

func (r *SetScheduleRequest) ApplyDefaults() {
	if len(r.Days) == 0 {
		r.Days = []int{0, 1, 2, 3, 4, 5, 6}
	}
	if r.Enabled == nil {
		enabled := true
		r.Enabled = &enabled
	}
}
