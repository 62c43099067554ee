// Package metrics aggregates training progress between log lines.
package metrics

import "time"

// Window accumulates stats across multiple frames.
type Window struct {
	steps        int
	frames       int
	compute      time.Duration
	lastLoss     float64
	lastAccuracy float64
	bestLoss     float64
	seen         bool
}

// Record adds one frame's measurements to the window.
func (w *Window) Record(steps int, computeTime time.Duration, loss, accuracy float64) {
	w.steps += steps
	w.frames++
	w.compute += computeTime
	w.lastLoss = loss
	w.lastAccuracy = accuracy
	if !w.seen || loss < w.bestLoss {
		w.bestLoss = loss
		w.seen = true
	}
}

// Snapshot returns aggregated metrics and resets the window.
//
// BestLoss spans the whole run and is not reset.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{
		LastLoss:     w.lastLoss,
		LastAccuracy: w.lastAccuracy,
		BestLoss:     w.bestLoss,
	}
	if w.compute > 0 {
		snap.StepsPerSec = float64(w.steps) / w.compute.Seconds()
	}
	if w.frames > 0 {
		snap.AvgFrameMS = (w.compute.Seconds() * 1000) / float64(w.frames)
	}

	w.steps = 0
	w.frames = 0
	w.compute = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	StepsPerSec  float64
	AvgFrameMS   float64
	LastLoss     float64
	LastAccuracy float64
	BestLoss     float64
}
