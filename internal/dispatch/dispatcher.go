// Package dispatch runs model operations on background workers and streams
// progress back over a single events channel. The presentation surface
// drains that channel in its own loop, so no worker ever touches UI state
// directly.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/usecase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy rejects a second submission while the slot's operation is in
	// flight; at most one operation runs per slot.
	ErrBusy = errors.New("an operation is already running for this model")

	ErrUnknownSlot = errors.New("unknown model slot")
)

type Dispatcher struct {
	runner *usecase.Runner
	events chan entity.ProgressEvent
	logger *zap.Logger

	mu       sync.Mutex
	models   map[string]port.Model
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

func New(runner *usecase.Runner, eventBuffer int, logger *zap.Logger) *Dispatcher {
	if eventBuffer <= 0 {
		eventBuffer = 64
	}
	return &Dispatcher{
		runner:   runner,
		events:   make(chan entity.ProgressEvent, eventBuffer),
		logger:   logger,
		models:   map[string]port.Model{},
		inflight: map[string]context.CancelFunc{},
	}
}

// Register binds a model to a slot name. Not safe once operations are being
// submitted for that slot.
func (d *Dispatcher) Register(slot string, m port.Model) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.models[slot] = m
}

// Model exposes a registered adapter for read-only use (Info, Descriptor).
func (d *Dispatcher) Model(slot string) (port.Model, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.models[slot]
	return m, ok
}

// Slots lists the registered slot names.
func (d *Dispatcher) Slots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.models))
	for slot := range d.models {
		out = append(out, slot)
	}
	return out
}

// Events is the progress/result/error stream. Consumers must drain it from a
// single goroutine of their own; events for one operation arrive in emission
// order with non-decreasing percentages and always end with a terminal event.
func (d *Dispatcher) Events() <-chan entity.ProgressEvent {
	return d.events
}

// Load starts a background model load. Returns the operation ID, or ErrBusy
// while the slot is occupied.
func (d *Dispatcher) Load(ctx context.Context, slot string) (uuid.UUID, error) {
	return d.submit(ctx, slot, entity.OperationKindLoad, nil)
}

// Predict starts a background prediction for the slot's model.
func (d *Dispatcher) Predict(ctx context.Context, slot string, input any) (uuid.UUID, error) {
	return d.submit(ctx, slot, entity.OperationKindPredict, input)
}

// Cancel aborts the slot's in-flight operation, if any. The worker still
// delivers its terminal event.
func (d *Dispatcher) Cancel(slot string) bool {
	d.mu.Lock()
	cancel, ok := d.inflight[slot]
	d.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Close waits for in-flight workers and closes the events channel. Consumers
// must keep draining until the channel closes.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	close(d.events)
}

func (d *Dispatcher) submit(ctx context.Context, slot string, kind entity.OperationKind, input any) (uuid.UUID, error) {
	d.mu.Lock()
	m, ok := d.models[slot]
	if !ok {
		d.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
	}
	if _, busy := d.inflight[slot]; busy {
		d.mu.Unlock()
		return uuid.Nil, ErrBusy
	}
	opCtx, cancel := context.WithCancel(ctx)
	d.inflight[slot] = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	op := entity.NewOperation(slot, kind, summarizeInput(input))
	d.runner.Begin(ctx, op)

	go d.run(opCtx, cancel, slot, op, m, input)
	return op.ID, nil
}

func (d *Dispatcher) run(ctx context.Context, cancel context.CancelFunc, slot string, op *entity.Operation, m port.Model, input any) {
	defer d.wg.Done()
	defer func() {
		d.mu.Lock()
		delete(d.inflight, slot)
		d.mu.Unlock()
		cancel()
	}()

	// last is only touched from this goroutine; it enforces the
	// non-decreasing percentage guarantee per operation.
	last := 0
	report := func(pct int, msg string) {
		if pct < last {
			pct = last
		}
		last = pct
		d.emit(entity.ProgressEvent{
			Slot:        slot,
			OperationID: op.ID,
			Percentage:  pct,
			Message:     msg,
		})
	}

	var result any
	var err error
	func() {
		// The worker boundary: no failure, including a panic inside a
		// pipeline binding, may escape and crash the process.
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("operation panicked: %v", rec)
				d.logger.Error("worker panic",
					zap.String("slot", slot),
					zap.String("operation_id", op.ID.String()),
					zap.Any("panic", rec),
				)
			}
		}()

		switch op.Kind {
		case entity.OperationKindLoad:
			err = d.runner.RunLoad(ctx, op, m, report)
		default:
			result, err = d.runner.RunPredict(ctx, op, m, input, report)
		}
	}()

	if err != nil {
		d.emit(entity.ProgressEvent{
			Slot:        slot,
			OperationID: op.ID,
			Percentage:  last,
			Message:     err.Error(),
			Terminal:    true,
			Err:         err,
		})
		return
	}

	d.emit(entity.ProgressEvent{
		Slot:        slot,
		OperationID: op.ID,
		Percentage:  100,
		Message:     "Operation completed",
		Terminal:    true,
		Result:      result,
	})
}

func (d *Dispatcher) emit(ev entity.ProgressEvent) {
	d.events <- ev
}

func summarizeInput(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		if len(v) > 200 {
			return v[:200]
		}
		return v
	default:
		return fmt.Sprintf("%T", v)
	}
}
