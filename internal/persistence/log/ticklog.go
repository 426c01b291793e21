// Package log persists the per-tick record stream as zstd-compressed JSONL,
// one file per server run.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// TickEntry is one line in the tick log.
type TickEntry struct {
	Tick          uint64  `json:"tick"`
	SimMinutes    float64 `json:"sim_minutes"`
	DeltaMinutes  float64 `json:"delta_minutes"`
	OperatingCost float64 `json:"operating_cost"`
	Effects       int     `json:"effects"`
	Robots        int     `json:"robots"`
	Digest        string  `json:"digest,omitempty"`
}

type TickLogger struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewTickLogger opens `<dir>/ticks-<timestamp>.jsonl.zst` for appending.
func NewTickLogger(dir string) (*TickLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("ticks-%s.jsonl.zst", time.Now().UTC().Format("20060102-150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &TickLogger{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

func (l *TickLogger) Write(e TickEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		return err
	}
	if err := l.enc.Close(); err != nil {
		return err
	}
	return l.f.Close()
}
