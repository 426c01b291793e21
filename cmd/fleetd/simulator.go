package main

import (
	"encoding/json"
	"net/http"
	"sync"

	persistlog "github.com/brentyates/greenkeeper-simulator-sub000/internal/persistence/log"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/protocol"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/course"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/equipment"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
)

// simulator owns the mutable run state. The tick loop and the HTTP handlers
// share it under one mutex; purchase/sell land between ticks by construction.
type simulator struct {
	mu sync.Mutex

	state    fleet.State
	course   *course.Course
	catalog  equipment.Catalog
	params   *fleet.Params
	tick     uint64
	minutes  float64
	treasury float64
	rng      interface{ Float64() float64 }
	fleetAI  bool
}

// step advances the simulation one tick and returns the observer frame plus
// the tick-log entry.
func (s *simulator) step(deltaMinutes float64) ([]byte, persistlog.TickEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.course.Candidates()
	res := fleet.Tick(s.state, fleet.TickInput{
		Candidates:    candidates,
		DeltaMinutes:  deltaMinutes,
		FleetAIActive: s.fleetAI,
		Rule:          s.course.CanTraverse,
		Rand:          s.rng,
		Params:        s.params,
	})
	s.state = res.State
	s.course.Apply(res.Effects, deltaMinutes)
	s.course.Step(deltaMinutes)
	s.treasury -= res.OperatingCost
	s.tick++
	s.minutes += deltaMinutes

	frame := s.tickFrameLocked(deltaMinutes, res)
	b, _ := json.Marshal(frame)
	entry := persistlog.TickEntry{
		Tick:          s.tick,
		SimMinutes:    s.minutes,
		DeltaMinutes:  deltaMinutes,
		OperatingCost: res.OperatingCost,
		Effects:       len(res.Effects),
		Robots:        len(s.state.Robots),
	}
	return b, entry
}

func (s *simulator) export() snapshot.SnapshotV1 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Export(s.tick, s.minutes, s.treasury, s.state, s.course)
}

func (s *simulator) helloFrame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(protocol.HelloFrame{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		CourseW:         s.course.W,
		CourseH:         s.course.H,
		StationX:        s.state.StationX,
		StationZ:        s.state.StationZ,
		Tick:            s.tick,
	})
	return b
}

func (s *simulator) tickFrameLocked(deltaMinutes float64, res fleet.TickResult) protocol.TickFrame {
	counts := fleet.CountUnits(s.state)
	frame := protocol.TickFrame{
		Type:          protocol.TypeTick,
		Tick:          s.tick,
		SimMinutes:    s.minutes,
		DeltaMinutes:  deltaMinutes,
		OperatingCost: res.OperatingCost,
		Treasury:      s.treasury,
		Counts: protocol.FleetCounts{
			Total:    counts.Total,
			Active:   counts.Active,
			Idle:     counts.Idle,
			Charging: counts.Charging,
			Broken:   counts.Broken,
		},
	}
	for i := range s.state.Robots {
		r := &s.state.Robots[i]
		info := protocol.RobotInfo{
			ID:          r.ID,
			Type:        r.Type,
			Model:       r.Model,
			X:           r.X,
			Z:           r.Z,
			State:       string(r.State),
			Resource:    r.Resource,
			ResourceMax: r.ResourceMax,
		}
		if r.Target != nil {
			tx, tz := r.Target.X, r.Target.Z
			info.TargetX, info.TargetZ = &tx, &tz
		}
		frame.Robots = append(frame.Robots, info)
	}
	for _, eff := range res.Effects {
		frame.Effects = append(frame.Effects, protocol.EffectInfo{
			Type:        eff.Type,
			EquipmentID: eff.EquipmentID,
			X:           eff.X,
			Z:           eff.Z,
			Efficiency:  eff.Efficiency,
		})
	}
	return frame
}

type purchaseReq struct {
	Model string `json:"model"`
}

type sellReq struct {
	RobotID string `json:"robot_id"`
}

func (s *simulator) handleFleet(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	frame := s.tickFrameLocked(0, fleet.TickResult{State: s.state})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, frame)
}

func (s *simulator) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	model, ok := s.catalog.Models[req.Model]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown model"})
		return
	}
	next, cost, ok := fleet.Purchase(s.state, model)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "model not purchasable"})
		return
	}
	s.state = next
	s.treasury -= cost
	bought := next.Robots[len(next.Robots)-1]
	writeJSON(w, http.StatusOK, map[string]any{"robot_id": bought.ID, "cost": cost})
}

func (s *simulator) handleSell(w http.ResponseWriter, r *http.Request) {
	var req sellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, refund, ok := fleet.Sell(s.state, req.RobotID, s.catalog.Models)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown robot"})
		return
	}
	s.state = next
	s.treasury += refund
	writeJSON(w, http.StatusOK, map[string]any{"refund": refund})
}
