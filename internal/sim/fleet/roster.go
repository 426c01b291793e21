package fleet

import (
	"math"

	"github.com/google/uuid"
)

// Purchase appends a new idle unit parked at the station with full resources.
// Fails when the model is not autonomous or carries no purchase cost; the
// second return is the amount to charge the buyer.
func Purchase(s State, model Model) (State, float64, bool) {
	if !model.IsAutonomous || model.PurchaseCost <= 0 {
		return State{}, 0, false
	}
	out := s.clone()
	out.Robots = append(out.Robots, RobotUnit{
		ID:          uuid.NewString(),
		Type:        model.Type,
		Model:       model.ID,
		Stats:       model.Stats,
		X:           s.StationX,
		Z:           s.StationZ,
		Resource:    model.Stats.FuelCapacity,
		ResourceMax: model.Stats.FuelCapacity,
		State:       StateIdle,
	})
	return out, model.PurchaseCost, true
}

// Sell removes the unit and refunds half its purchase cost, floored. Fails
// when the id is unknown.
func Sell(s State, robotID string, models map[string]Model) (State, float64, bool) {
	idx := -1
	for i := range s.Robots {
		if s.Robots[i].ID == robotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return State{}, 0, false
	}
	refund := 0.0
	if m, ok := models[s.Robots[idx].Model]; ok {
		refund = math.Floor(0.5 * m.PurchaseCost)
	}
	out := s.clone()
	out.Robots = append(out.Robots[:idx], out.Robots[idx+1:]...)
	return out, refund, true
}

// Counts is a read-only aggregation of the roster.
type Counts struct {
	Total    int
	Active   int // working or moving
	Idle     int
	Charging int
	Broken   int
	ByType   map[string]int
}

// CountUnits aggregates the fleet by state and type.
func CountUnits(s State) Counts {
	c := Counts{ByType: map[string]int{}}
	for i := range s.Robots {
		r := &s.Robots[i]
		c.Total++
		c.ByType[r.Type]++
		switch r.State {
		case StateWorking, StateMoving:
			c.Active++
		case StateIdle:
			c.Idle++
		case StateCharging:
			c.Charging++
		case StateBroken:
			c.Broken++
		}
	}
	return c
}

// Find returns the unit with the given id, if present.
func Find(s State, robotID string) (RobotUnit, bool) {
	for i := range s.Robots {
		if s.Robots[i].ID == robotID {
			return s.Robots[i].clone(), true
		}
	}
	return RobotUnit{}, false
}
