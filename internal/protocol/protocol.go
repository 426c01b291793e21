// Package protocol defines the read-only observer frames the server streams
// over websocket. Schemas for the frames live under configs/schemas and are
// verified in tests.
package protocol

import "encoding/json"

const Version = "1.0"

// Frame types.
const (
	TypeHello = "HELLO"
	TypeTick  = "TICK"
)

// BaseFrame routes unknown JSON frames by type.
type BaseFrame struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseFrame, error) {
	var f BaseFrame
	err := json.Unmarshal(b, &f)
	return f, err
}

// HelloFrame is sent once when an observer connects.
type HelloFrame struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	CourseW         int     `json:"course_w"`
	CourseH         int     `json:"course_h"`
	StationX        float64 `json:"station_x"`
	StationZ        float64 `json:"station_z"`
	Tick            uint64  `json:"tick"`
}

// TickFrame is broadcast after every simulation step.
type TickFrame struct {
	Type          string       `json:"type"`
	Tick          uint64       `json:"tick"`
	SimMinutes    float64      `json:"sim_minutes"`
	DeltaMinutes  float64      `json:"delta_minutes"`
	OperatingCost float64      `json:"operating_cost"`
	Treasury      float64      `json:"treasury"`
	Counts        FleetCounts  `json:"counts"`
	Robots        []RobotInfo  `json:"robots"`
	Effects       []EffectInfo `json:"effects,omitempty"`
}

type FleetCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Idle     int `json:"idle"`
	Charging int `json:"charging"`
	Broken   int `json:"broken"`
}

type RobotInfo struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Model       string   `json:"model"`
	X           float64  `json:"x"`
	Z           float64  `json:"z"`
	State       string   `json:"state"`
	Resource    float64  `json:"resource"`
	ResourceMax float64  `json:"resource_max"`
	TargetX     *float64 `json:"target_x,omitempty"`
	TargetZ     *float64 `json:"target_z,omitempty"`
}

type EffectInfo struct {
	Type        string  `json:"type"`
	EquipmentID string  `json:"equipment_id"`
	X           float64 `json:"x"`
	Z           float64 `json:"z"`
	Efficiency  float64 `json:"efficiency"`
}
