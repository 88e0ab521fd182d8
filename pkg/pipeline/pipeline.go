// Package pipeline orchestrates image load, segmentation, box derivation and
// viewport mapping under a cancellable single-flight run protocol.
//
// Every run captures a monotonically increasing token at start. Each commit
// point compares its token against the latest one before writing state, so
// only the most-recently-started run ever becomes externally observable:
// last-writer-wins by start order, not by completion order. Superseded runs
// finish harmlessly; their results are discarded in silence, never surfaced
// as errors.
package pipeline

import (
	"context"
	"image"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/menta2k/garment-overlay/pkg/regions"
	"github.com/menta2k/garment-overlay/pkg/segmentation"
	"github.com/menta2k/garment-overlay/pkg/types"
	"github.com/menta2k/garment-overlay/pkg/viewport"
)

// Phase discriminates the run state variant.
type Phase int

const (
	Idle Phase = iota
	Loading
	Processing
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Processing:
		return "processing"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// RunState is the single externally observable pipeline value. It is always
// replaced as a whole: Boxes and Draw are only meaningful in Ready, Err only
// in Failed.
type RunState struct {
	Phase Phase
	Boxes []types.Box
	Draw  types.DrawRect
	Err   string
}

// Loader loads a source image; pkg/loader satisfies this.
type Loader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// Request describes one pipeline invocation. A new request supersedes any
// in-flight run.
type Request struct {
	Source   string
	Regions  []types.Region
	SurfaceW float64
	SurfaceH float64
}

// StateMachine owns the current RunState and runs the load → segment →
// derive → map sequence for each submitted request.
type StateMachine struct {
	loader   Loader
	provider segmentation.Provider
	config   regions.Config
	log      zerolog.Logger

	onChange func(RunState)

	mu     sync.Mutex
	latest uint64
	state  RunState

	wg sync.WaitGroup
}

// New creates a StateMachine in the Idle state.
func New(l Loader, p segmentation.Provider, cfg regions.Config) *StateMachine {
	return &StateMachine{
		loader:   l,
		provider: p,
		config:   cfg,
		log:      zerolog.Nop(),
		state:    RunState{Phase: Idle},
	}
}

// SetLogger attaches a logger. Call before the first Submit.
func (m *StateMachine) SetLogger(log zerolog.Logger) {
	m.log = log
}

// OnChange registers a callback invoked with every committed state. The
// callback runs with the machine's lock held and must not call back into the
// machine. Call before the first Submit.
func (m *StateMachine) OnChange(fn func(RunState)) {
	m.onChange = fn
}

// State returns the current run state.
func (m *StateMachine) State() RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Wait blocks until all runs submitted so far have finished, including
// superseded ones.
func (m *StateMachine) Wait() {
	m.wg.Wait()
}

// Submit starts a new run and returns its correlation id. The new run
// immediately becomes authoritative: any in-flight run is superseded and its
// later commits will be discarded.
func (m *StateMachine) Submit(ctx context.Context, req Request) string {
	runID := uuid.NewString()

	m.mu.Lock()
	m.latest++
	token := m.latest
	m.setLocked(RunState{Phase: Loading})
	m.mu.Unlock()

	m.log.Debug().Str("run", runID).Str("source", req.Source).Msg("run started")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx, token, runID, req)
	}()

	return runID
}

func (m *StateMachine) run(ctx context.Context, token uint64, runID string, req Request) {
	log := m.log.With().Str("run", runID).Logger()

	if len(req.Regions) == 0 {
		m.commit(token, RunState{Phase: Failed, Err: "no regions configured"})
		return
	}

	img, err := m.loader.Load(ctx, req.Source)
	if err != nil {
		log.Debug().Err(err).Msg("image load failed")
		m.commit(token, RunState{Phase: Failed, Err: err.Error()})
		return
	}

	if !m.commit(token, RunState{Phase: Processing}) {
		log.Debug().Msg("superseded before segmentation, discarding")
		return
	}

	// The provider cannot be aborted; a superseded run lets it finish and
	// throws the mask away at the next commit point.
	mask, err := m.provider.Segment(ctx, img)
	if err != nil {
		log.Debug().Err(err).Msg("segmentation failed")
		m.commit(token, RunState{Phase: Failed, Err: err.Error()})
		return
	}

	// Pure, non-blocking geometry from here on.
	boxes := regions.Derive(mask, req.Regions, m.config)
	bounds := img.Bounds()
	draw := viewport.ContainFit(float64(bounds.Dx()), float64(bounds.Dy()), req.SurfaceW, req.SurfaceH)

	if !m.commit(token, RunState{Phase: Ready, Boxes: boxes, Draw: draw}) {
		log.Debug().Msg("stale result discarded")
	}
}

// commit writes the state if and only if the run is still the latest one.
func (m *StateMachine) commit(token uint64, st RunState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token != m.latest {
		return false
	}
	m.setLocked(st)
	return true
}

func (m *StateMachine) setLocked(st RunState) {
	m.state = st
	if m.onChange != nil {
		m.onChange(st)
	}
}
