// FilePath: internal/models/models.feeder.go
package models

import (
	"fmt"
	"time"
)

// FeederModule is one physical dispensing unit: an ESP32-driven auger with an
// attached ESP32-CAM. Online state fields are owned by the reachability
// reconciliation step and must not be written by anything else.
type FeederModule struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	DeviceHost    string     `json:"device_host" db:"device_host"`
	DevicePort    int        `json:"device_port" db:"device_port"`
	CameraHost    string     `json:"camera_host" db:"camera_host"`
	CameraPort    int        `json:"camera_port" db:"camera_port"`
	Location      string     `json:"location" db:"location"`
	CapacityGrams int        `json:"max_capacity_g" db:"max_capacity_g"`
	CurrentWeight float64    `json:"current_weight_g" db:"current_weight_g"`
	Active        bool       `json:"is_active" db:"is_active"`
	Online        bool       `json:"is_online" db:"is_online"`
	LastOnline    *time.Time `json:"last_online,omitempty" db:"last_online"`
	LastOffline   *time.Time `json:"last_offline,omitempty" db:"last_offline"`
	WifiStrength  int        `json:"wifi_strength" db:"wifi_strength"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// DeviceAddress returns the host:port of the main dispenser controller.
func (f *FeederModule) DeviceAddress() string {
	return fmt.Sprintf("%s:%d", f.DeviceHost, f.DevicePort)
}

// CameraAddress returns the host:port of the camera unit, or "" when no
// camera is configured for this module.
func (f *FeederModule) CameraAddress() string {
	if f.CameraHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", f.CameraHost, f.CameraPort)
}

// DeviceStatus is the live status payload a dispenser reports on its status
// endpoint. It is displayed opportunistically and never persisted into the
// feeders table.
type DeviceStatus struct {
	Online           bool    `json:"online"`
	Weight           float64 `json:"weight"`
	DispensingActive bool    `json:"dispensing_active"`
	TargetWeight     float64 `json:"target_weight"`
	FeedingID        string  `json:"feeding_id,omitempty"`
}
