package board

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/model"
)

// ErrorDisplayTime is how long a failure message stays visible
const ErrorDisplayTime = 3 * time.Second

// User-facing failure messages. The underlying error only goes to the log.
const (
	MsgLoad        = "failed to load activities"
	MsgCreate      = "failed to create activity"
	MsgEmptyCreate = "description must not be empty"
	MsgFinish      = "failed to finish activity"
	MsgRevert      = "failed to revert activity"
	MsgEdit        = "failed to edit activity"
	MsgDelete      = "failed to delete activity"
	MsgLookup      = "failed to look up activity"
)

// Store is the remote activity store the board reconciles against.
// *api.Client implements it.
type Store interface {
	ListUnfinished(ctx context.Context) ([]model.Activity, error)
	ListFinished(ctx context.Context) ([]model.Activity, error)
	Create(ctx context.Context, description string, createdAt time.Time) (model.Activity, error)
	Finish(ctx context.Context, id int64) (model.Activity, error)
	Revert(ctx context.Context, id int64) (model.Activity, error)
	Edit(ctx context.Context, id int64, description string) (model.Activity, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (model.Activity, error)
}

// ReconcilePolicy decides when finish and revert re-fetch both lists
type ReconcilePolicy int

const (
	// ReconcileAlways refreshes after every successful finish or revert
	ReconcileAlways ReconcilePolicy = iota
	// ReconcileOnDrift refreshes only when the id was missing locally
	ReconcileOnDrift
)

// ParseReconcilePolicy maps the config value to a policy
func ParseReconcilePolicy(s string) ReconcilePolicy {
	if s == "on-drift" {
		return ReconcileOnDrift
	}
	return ReconcileAlways
}

// Board owns the local view of the activity store: the two collections,
// the transient error, the lookup result and the dialog state.
//
// Network calls run without holding the lock, so concurrent actions are
// not excluded from each other; whichever response lands last wins.
type Board struct {
	store    Store
	policy   ReconcilePolicy
	errorTTL time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    State
	errTimer *time.Timer
	errGen   uint64
	onChange func()
}

// Option configures a Board
type Option func(*Board)

// WithReconcile sets the reconciliation policy
func WithReconcile(p ReconcilePolicy) Option {
	return func(b *Board) { b.policy = p }
}

// WithErrorTTL overrides ErrorDisplayTime
func WithErrorTTL(d time.Duration) Option {
	return func(b *Board) { b.errorTTL = d }
}

// WithClock sets the time source used for createdAt
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates an empty board; call Load to populate it
func New(store Store, opts ...Option) *Board {
	b := &Board{
		store:    store,
		policy:   ReconcileAlways,
		errorTTL: ErrorDisplayTime,
		now:      time.Now,
		state: State{
			Unfinished: []model.Activity{},
			Finished:   []model.Activity{},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetOnChange registers a callback run after every state change,
// including the timed clearing of the error message
func (b *Board) SetOnChange(callback func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = callback
}

// update applies fn under the lock and then notifies the observer
func (b *Board) update(fn func(s *State)) {
	b.mu.Lock()
	fn(&b.state)
	callback := b.onChange
	b.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// fail logs err and publishes msg for errorTTL. A newer failure replaces
// the message and restarts the timer. Successes leave a running timer alone.
func (b *Board) fail(action, msg string, err error, fields ...logger.Field) {
	fields = append(fields, logger.F("action", action))
	if err != nil {
		fields = append(fields, logger.F("error", err))
	}
	logger.Warn("Board action failed", fields...)

	b.mu.Lock()
	b.state.Error = msg
	if b.errTimer != nil {
		b.errTimer.Stop()
	}
	b.errGen++
	gen := b.errGen
	b.errTimer = time.AfterFunc(b.errorTTL, func() { b.clearError(gen) })
	callback := b.onChange
	b.mu.Unlock()

	if callback != nil {
		callback()
	}
}

func (b *Board) clearError(gen uint64) {
	b.mu.Lock()
	// a timer that fired while a newer failure was being published
	if gen != b.errGen {
		b.mu.Unlock()
		return
	}
	b.state.Error = ""
	b.errTimer = nil
	callback := b.onChange
	b.mu.Unlock()

	if callback != nil {
		callback()
	}
}

// Load fetches both lists and replaces the local collections wholesale.
// Nothing changes locally unless both calls succeed.
func (b *Board) Load(ctx context.Context) {
	unfinished, err := b.store.ListUnfinished(ctx)
	if err != nil {
		b.fail("load", MsgLoad, err)
		return
	}
	finished, err := b.store.ListFinished(ctx)
	if err != nil {
		b.fail("load", MsgLoad, err)
		return
	}

	b.update(func(s *State) {
		s.Unfinished = nonNil(unfinished)
		s.Finished = nonNil(finished)
	})
	logger.Debug("Board loaded",
		logger.F("unfinished", len(unfinished)),
		logger.F("finished", len(finished)))
}

// Create sends the draft description, appends the new activity to the
// unfinished list, closes the create dialog and then refreshes both lists.
func (b *Board) Create(ctx context.Context) {
	b.mu.Lock()
	draft := strings.TrimSpace(b.state.Draft)
	b.mu.Unlock()

	if draft == "" {
		b.fail("create", MsgEmptyCreate, nil)
		return
	}

	a, err := b.store.Create(ctx, draft, b.now())
	if err != nil {
		b.fail("create", MsgCreate, err)
		return
	}

	b.update(func(s *State) {
		s.Unfinished = append(without(s.Unfinished, a.ID), a)
		s.Finished = without(s.Finished, a.ID)
		s.CreateOpen = false
		s.Draft = ""
	})
	logger.Info("Activity created", logger.F("id", a.ID))

	b.Load(ctx)
}

// Finish marks id as done on the server and moves it to the finished list
func (b *Board) Finish(ctx context.Context, id int64) {
	a, err := b.store.Finish(ctx, id)
	if err != nil {
		b.fail("finish", MsgFinish, err, logger.F("id", id))
		return
	}
	a.IsDone = true

	found := false
	b.update(func(s *State) {
		found = contains(s.Unfinished, id)
		s.Unfinished = without(s.Unfinished, id)
		s.Finished = append(without(s.Finished, id), a)
	})
	logger.Info("Activity finished", logger.F("id", id), logger.F("foundLocally", found))

	b.reconcile(ctx, found)
}

// Revert reopens id on the server and moves it back to the unfinished list
func (b *Board) Revert(ctx context.Context, id int64) {
	a, err := b.store.Revert(ctx, id)
	if err != nil {
		b.fail("revert", MsgRevert, err, logger.F("id", id))
		return
	}
	a = a.Reopened()

	found := false
	b.update(func(s *State) {
		found = contains(s.Finished, id)
		s.Finished = without(s.Finished, id)
		s.Unfinished = append(without(s.Unfinished, id), a)
	})
	logger.Info("Activity reverted", logger.F("id", id), logger.F("foundLocally", found))

	b.reconcile(ctx, found)
}

func (b *Board) reconcile(ctx context.Context, foundLocally bool) {
	if b.policy == ReconcileAlways || !foundLocally {
		if !foundLocally {
			logger.Warn("Local state drifted from server, refreshing")
		}
		b.Load(ctx)
	}
}

// Edit saves the description of the activity being edited. Only the
// unfinished list is patched; finished items are not editable here.
func (b *Board) Edit(ctx context.Context) {
	b.mu.Lock()
	var target *model.Activity
	if b.state.EditTarget != nil {
		t := *b.state.EditTarget
		target = &t
	}
	b.mu.Unlock()

	if target == nil {
		return
	}

	a, err := b.store.Edit(ctx, target.ID, target.Description)
	if err != nil {
		b.fail("edit", MsgEdit, err, logger.F("id", target.ID))
		return
	}

	b.update(func(s *State) {
		for i := range s.Unfinished {
			if s.Unfinished[i].ID == target.ID {
				s.Unfinished[i] = a
			}
		}
		s.EditOpen = false
		s.EditTarget = nil
		s.ConfirmOpen = false
		s.Pending = PendingAction{}
	})
	logger.Info("Activity edited", logger.F("id", target.ID))
}

// Delete removes id on the server and from both local lists
func (b *Board) Delete(ctx context.Context, id int64) {
	if err := b.store.Delete(ctx, id); err != nil {
		b.fail("delete", MsgDelete, err, logger.F("id", id))
		return
	}

	b.update(func(s *State) {
		s.Unfinished = without(s.Unfinished, id)
		s.Finished = without(s.Finished, id)
		s.ConfirmOpen = false
		s.Pending = PendingAction{}
	})
	logger.Info("Activity deleted", logger.F("id", id))
}

// LookupByID fetches one activity into the lookup slot. On failure the
// slot is emptied and the generic message is shown.
func (b *Board) LookupByID(ctx context.Context, id int64) {
	a, err := b.store.GetByID(ctx, id)
	if err != nil {
		b.update(func(s *State) { s.Lookup = nil })
		b.fail("lookup", MsgLookup, err, logger.F("id", id))
		return
	}
	b.update(func(s *State) { s.Lookup = &a })
}

// ClearLookup empties the lookup slot
func (b *Board) ClearLookup() {
	b.update(func(s *State) { s.Lookup = nil })
}

func contains(list []model.Activity, id int64) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

// without returns a new slice with every item carrying id removed
func without(list []model.Activity, id int64) []model.Activity {
	out := make([]model.Activity, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func nonNil(list []model.Activity) []model.Activity {
	if list == nil {
		return []model.Activity{}
	}
	return list
}
