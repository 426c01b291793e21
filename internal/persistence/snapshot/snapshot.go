// Package snapshot serializes the fleet+course state as zstd-compressed JSON
// so a server restart resumes where it left off.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/course"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet/logic/nav"
)

const version = 1

type Header struct {
	Version    int     `json:"version"`
	Tick       uint64  `json:"tick"`
	SimMinutes float64 `json:"sim_minutes"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	StationX float64 `json:"station_x"`
	StationZ float64 `json:"station_z"`
	Treasury float64 `json:"treasury"`

	Robots []RobotV1 `json:"robots"`
	Course CourseV1  `json:"course"`
}

type RobotV1 struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Model string `json:"model"`

	Speed                float64  `json:"speed"`
	Efficiency           float64  `json:"efficiency"`
	FuelCapacity         float64  `json:"fuel_capacity"`
	FuelEfficiency       float64  `json:"fuel_efficiency"`
	BreakdownRate        float64  `json:"breakdown_rate"`
	RepairMinutes        float64  `json:"repair_minutes"`
	OperatingCostPerHour float64  `json:"operating_cost_per_hour"`
	AllowedTerrain       []string `json:"allowed_terrain,omitempty"`

	X           float64 `json:"x"`
	Z           float64 `json:"z"`
	Resource    float64 `json:"resource"`
	ResourceMax float64 `json:"resource_max"`
	State       string  `json:"state"`

	TargetX *float64     `json:"target_x,omitempty"`
	TargetZ *float64     `json:"target_z,omitempty"`
	Path    [][2]float64 `json:"path,omitempty"`
	PathIdx int          `json:"path_idx,omitempty"`

	BreakdownRemaining float64 `json:"breakdown_remaining,omitempty"`
}

type CourseV1 struct {
	W         int       `json:"w"`
	H         int       `json:"h"`
	Terrain   []byte    `json:"terrain"`
	Moisture  []float64 `json:"moisture"`
	Nutrients []float64 `json:"nutrients"`
	Height    []float64 `json:"height"`
	Health    []float64 `json:"health"`
}

// Export captures the running state.
func Export(tick uint64, simMinutes, treasury float64, s fleet.State, c *course.Course) SnapshotV1 {
	snap := SnapshotV1{
		Header:   Header{Version: version, Tick: tick, SimMinutes: simMinutes},
		StationX: s.StationX,
		StationZ: s.StationZ,
		Treasury: treasury,
	}
	for i := range s.Robots {
		r := &s.Robots[i]
		rv := RobotV1{
			ID:                   r.ID,
			Type:                 r.Type,
			Model:                r.Model,
			Speed:                r.Stats.Speed,
			Efficiency:           r.Stats.Efficiency,
			FuelCapacity:         r.Stats.FuelCapacity,
			FuelEfficiency:       r.Stats.FuelEfficiency,
			BreakdownRate:        r.Stats.BreakdownRate,
			RepairMinutes:        r.Stats.RepairMinutes,
			OperatingCostPerHour: r.Stats.OperatingCostPerHour,
			AllowedTerrain:       r.Stats.AllowedTerrain,
			X:                    r.X,
			Z:                    r.Z,
			Resource:             r.Resource,
			ResourceMax:          r.ResourceMax,
			State:                string(r.State),
			PathIdx:              r.PathIndex,
			BreakdownRemaining:   r.BreakdownRemaining,
		}
		if r.Target != nil {
			tx, tz := r.Target.X, r.Target.Z
			rv.TargetX, rv.TargetZ = &tx, &tz
		}
		for _, wp := range r.Path {
			rv.Path = append(rv.Path, [2]float64{wp.X, wp.Z})
		}
		snap.Robots = append(snap.Robots, rv)
	}
	terrain, moisture, nutrients, height, health := c.Export()
	snap.Course = CourseV1{
		W: c.W, H: c.H,
		Terrain: terrain, Moisture: moisture, Nutrients: nutrients,
		Height: height, Health: health,
	}
	return snap
}

// Restore rebuilds the fleet state and course from a snapshot.
func Restore(snap SnapshotV1, params course.Params) (fleet.State, *course.Course, error) {
	if snap.Header.Version != version {
		return fleet.State{}, nil, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	s := fleet.NewState(snap.StationX, snap.StationZ)
	for _, rv := range snap.Robots {
		r := fleet.RobotUnit{
			ID:    rv.ID,
			Type:  rv.Type,
			Model: rv.Model,
			Stats: fleet.Stats{
				Speed:                rv.Speed,
				Efficiency:           rv.Efficiency,
				FuelCapacity:         rv.FuelCapacity,
				FuelEfficiency:       rv.FuelEfficiency,
				BreakdownRate:        rv.BreakdownRate,
				RepairMinutes:        rv.RepairMinutes,
				OperatingCostPerHour: rv.OperatingCostPerHour,
				AllowedTerrain:       rv.AllowedTerrain,
			},
			X:                  rv.X,
			Z:                  rv.Z,
			Resource:           rv.Resource,
			ResourceMax:        rv.ResourceMax,
			State:              fleet.RobotState(rv.State),
			PathIndex:          rv.PathIdx,
			BreakdownRemaining: rv.BreakdownRemaining,
		}
		if rv.TargetX != nil && rv.TargetZ != nil {
			r.Target = &nav.Vec2{X: *rv.TargetX, Z: *rv.TargetZ}
		}
		for _, wp := range rv.Path {
			r.Path = append(r.Path, nav.Vec2{X: wp[0], Z: wp[1]})
		}
		s.Robots = append(s.Robots, r)
	}
	c, err := course.Restore(snap.Course.W, snap.Course.H, params,
		snap.Course.Terrain, snap.Course.Moisture, snap.Course.Nutrients,
		snap.Course.Height, snap.Course.Health)
	if err != nil {
		return fleet.State{}, nil, err
	}
	return s, c, nil
}

// Save writes the snapshot to `<dir>/snap-<tick>.json.zst` and returns the path.
func Save(dir string, snap SnapshotV1) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("snap-%012d.json.zst", snap.Header.Tick))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return "", err
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// Load reads one snapshot file.
func Load(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// LoadLatest loads the newest snapshot under dir, if any exist.
func LoadLatest(dir string) (SnapshotV1, string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return SnapshotV1{}, "", false, nil
		}
		return SnapshotV1{}, "", false, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "snap-") && strings.HasSuffix(e.Name(), ".json.zst") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return SnapshotV1{}, "", false, nil
	}
	sort.Strings(names)
	path := filepath.Join(dir, names[len(names)-1])
	snap, err := Load(path)
	if err != nil {
		return SnapshotV1{}, "", false, err
	}
	return snap, path, true, nil
}
