package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brentyates/greenkeeper-simulator-sub000/internal/persistence/indexdb"
	persistlog "github.com/brentyates/greenkeeper-simulator-sub000/internal/persistence/log"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/course"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/equipment"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/sim/tuning"
	"github.com/brentyates/greenkeeper-simulator-sub000/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		configDir    = flag.String("configs", "./configs", "config directory")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		seed         = flag.Int64("seed", 1337, "course + breakdown seed (fresh starts only)")
		courseW      = flag.Int("course_w", 96, "course width in tiles")
		courseH      = flag.Int("course_h", 64, "course height in tiles")
		stationX     = flag.Float64("station_x", 4, "charging station x")
		stationZ     = flag.Float64("station_z", 4, "charging station z")
		fleetAI      = flag.Bool("fleet_ai", true, "fleet AI research active (lowers breakdowns)")
		starterFleet = flag.Bool("starter_fleet", true, "purchase one of each model on a fresh start")
		loadLatest   = flag.Bool("load_latest_snapshot", true, "resume from the latest snapshot if present")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite tick/snapshot index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[fleetd] ", log.LstdFlags|log.Lmicroseconds)

	tun, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}
	cat, err := equipment.Load(filepath.Join(*configDir, "equipment.yaml"))
	if err != nil {
		logger.Fatalf("load equipment: %v", err)
	}

	courseParams := course.Params{
		GrowthPerMinute:       tun.Course.GrowthPerMinute,
		MoistureLossPerMinute: tun.Course.MoistureLossPerMinute,
		NutrientLossPerMinute: tun.Course.NutrientLossPerMinute,
		PatchSize:             tun.Course.PatchSize,
	}

	snapDir := filepath.Join(*dataDir, "snapshots")
	var (
		state      fleet.State
		crs        *course.Course
		tick       uint64
		simMinutes float64
		treasury   float64
	)
	resumed := false
	if *loadLatest {
		snap, path, ok, err := snapshot.LoadLatest(snapDir)
		if err != nil {
			logger.Fatalf("load snapshot: %v", err)
		}
		if ok {
			state, crs, err = snapshot.Restore(snap, courseParams)
			if err != nil {
				logger.Fatalf("restore snapshot: %v", err)
			}
			tick = snap.Header.Tick
			simMinutes = snap.Header.SimMinutes
			treasury = snap.Treasury
			resumed = true
			logger.Printf("resumed from %s (tick %d, %d robots)", path, tick, len(state.Robots))
		}
	}
	if !resumed {
		state = fleet.NewState(*stationX, *stationZ)
		crs = course.Generate(*courseW, *courseH, *seed, courseParams)
		if *starterFleet {
			ids := make([]string, 0, len(cat.Models))
			for id := range cat.Models {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				next, cost, ok := fleet.Purchase(state, cat.Models[id])
				if !ok {
					continue
				}
				state = next
				treasury -= cost
			}
		}
		logger.Printf("fresh course %dx%d, %d robots purchased", crs.W, crs.H, len(state.Robots))
	}

	params := tun.FleetParams()
	sim := &simulator{
		state:    state,
		course:   crs,
		catalog:  cat,
		params:   &params,
		tick:     tick,
		minutes:  simMinutes,
		treasury: treasury,
		rng:      rand.New(rand.NewSource(*seed)),
		fleetAI:  *fleetAI,
	}

	ticklog, err := persistlog.NewTickLogger(filepath.Join(*dataDir, "ticklogs"))
	if err != nil {
		logger.Fatalf("open tick log: %v", err)
	}
	defer ticklog.Close()

	var index *indexdb.Store
	if !*disableDB {
		index, err = indexdb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer index.Close()
	}

	obs := observer.NewServer(logger)
	obs.SetHello(sim.helloFrame())

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/fleet", sim.handleFleet)
	r.Post("/v1/fleet/purchase", sim.handlePurchase)
	r.Post("/v1/fleet/sell", sim.handleSell)
	r.Get("/v1/observer", obs.Handler().ServeHTTP)

	srv := &http.Server{Addr: *addr, Handler: r}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	tickMs := tun.TickMs
	if tickMs <= 0 {
		tickMs = 1000
	}
	minutesPerTick := tun.MinutesPerTick
	if minutesPerTick <= 0 {
		minutesPerTick = 1
	}
	snapEvery := tun.SnapshotEveryTicks
	if snapEvery <= 0 {
		snapEvery = 300
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(tickMs) * time.Millisecond)
	defer ticker.Stop()

	for running := true; running; {
		select {
		case <-ticker.C:
			frame, entry := sim.step(minutesPerTick)
			obs.Broadcast(frame)
			if err := ticklog.Write(entry); err != nil {
				logger.Printf("tick log: %v", err)
			}
			if index != nil {
				index.RecordTick(indexdb.TickRow{
					Tick:          entry.Tick,
					SimMinutes:    entry.SimMinutes,
					OperatingCost: entry.OperatingCost,
					Effects:       entry.Effects,
					Robots:        entry.Robots,
				})
			}
			if entry.Tick%uint64(snapEvery) == 0 {
				snap := sim.export()
				path, err := snapshot.Save(snapDir, snap)
				if err != nil {
					logger.Printf("snapshot: %v", err)
				} else if index != nil {
					index.RecordSnapshot(indexdb.SnapshotRow{Tick: snap.Header.Tick, Path: path, Robots: len(snap.Robots)})
				}
			}
		case <-stop:
			running = false
		}
	}

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)

	snap := sim.export()
	if path, err := snapshot.Save(snapDir, snap); err != nil {
		logger.Printf("final snapshot: %v", err)
	} else {
		logger.Printf("final snapshot written to %s", path)
	}
}

// writeJSON is the shared HTTP response helper.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
