package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/island/island"
)

// PhaseTelemetry times the bookkeeping done after a cycle's own phases.
const PhaseTelemetry = "telemetry"

// PerfPhases lists every phase the collector reports, in cycle order.
var PerfPhases = append(append([]string{}, island.Phases...), PhaseTelemetry)

// PerfSample holds timing data for a single cycle.
type PerfSample struct {
	CycleDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	cycleStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of cycles to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartCycle begins timing a new annual cycle.
func (p *PerfCollector) StartCycle() {
	p.cycleStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
// Its signature matches island.WithPhaseHook.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndCycle finishes timing the current cycle and records the sample.
func (p *PerfCollector) EndCycle() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		CycleDuration: now.Sub(p.cycleStart),
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgCycleDuration time.Duration
	MinCycleDuration time.Duration
	MaxCycleDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total cycle time
	PhasePct map[string]float64

	CyclesPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minDur, maxDur time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.CycleDuration
		if i == 0 || s.CycleDuration < minDur {
			minDur = s.CycleDuration
		}
		if s.CycleDuration > maxDur {
			maxDur = s.CycleDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgCycleDuration: avg,
		MinCycleDuration: minDur,
		MaxCycleDuration: maxDur,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		CyclesPerSecond:  perSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_cycle_us", s.AvgCycleDuration.Microseconds(),
		"min_cycle_us", s.MinCycleDuration.Microseconds(),
		"max_cycle_us", s.MaxCycleDuration.Microseconds(),
		"cycles_per_sec", int(s.CyclesPerSecond),
	}
	for _, phase := range PerfPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_cycle_us", s.AvgCycleDuration.Microseconds()),
		slog.Int64("min_cycle_us", s.MinCycleDuration.Microseconds()),
		slog.Int64("max_cycle_us", s.MaxCycleDuration.Microseconds()),
		slog.Float64("cycles_per_sec", s.CyclesPerSecond),
	}
	for _, phase := range PerfPhases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Year              int     `csv:"year"`
	AvgCycleUS        int64   `csv:"avg_cycle_us"`
	MinCycleUS        int64   `csv:"min_cycle_us"`
	MaxCycleUS        int64   `csv:"max_cycle_us"`
	CyclesPerSec      float64 `csv:"cycles_per_sec"`
	RegeneratePct     float64 `csv:"regenerate_pct"`
	FeedHerbivoresPct float64 `csv:"feed_herbivores_pct"`
	FeedCarnivoresPct float64 `csv:"feed_carnivores_pct"`
	MatePct           float64 `csv:"mate_pct"`
	MigratePct        float64 `csv:"migrate_pct"`
	AgePct            float64 `csv:"age_pct"`
	LoseWeightPct     float64 `csv:"lose_weight_pct"`
	CullPct           float64 `csv:"cull_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(year int) PerfStatsCSV {
	return PerfStatsCSV{
		Year:              year,
		AvgCycleUS:        s.AvgCycleDuration.Microseconds(),
		MinCycleUS:        s.MinCycleDuration.Microseconds(),
		MaxCycleUS:        s.MaxCycleDuration.Microseconds(),
		CyclesPerSec:      s.CyclesPerSecond,
		RegeneratePct:     s.PhasePct[island.PhaseRegenerate],
		FeedHerbivoresPct: s.PhasePct[island.PhaseFeedHerbivores],
		FeedCarnivoresPct: s.PhasePct[island.PhaseFeedCarnivores],
		MatePct:           s.PhasePct[island.PhaseMate],
		MigratePct:        s.PhasePct[island.PhaseMigrate],
		AgePct:            s.PhasePct[island.PhaseAge],
		LoseWeightPct:     s.PhasePct[island.PhaseLoseWeight],
		CullPct:           s.PhasePct[island.PhaseCull],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
