package board

import (
	"context"

	"github.com/existflow/activityboard/internal/model"
)

// ActionKind tags the action waiting for confirmation
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionEdit
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionEdit:
		return "edit"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// PendingAction is the action the confirmation dialog will run.
// ID is only meaningful for ActionDelete.
type PendingAction struct {
	Kind ActionKind
	ID   int64
}

// State is everything the presentation layer reads
type State struct {
	Unfinished []model.Activity
	Finished   []model.Activity

	Error  string          // transient failure message, empty when none
	Lookup *model.Activity // result of the last LookupByID

	CreateOpen  bool
	EditOpen    bool
	ConfirmOpen bool

	Draft      string          // description typed in the create dialog
	EditTarget *model.Activity // working copy of the activity being edited
	Pending    PendingAction
}

// Snapshot returns a deep copy of the current state
func (b *Board) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.state
	s.Unfinished = append([]model.Activity{}, b.state.Unfinished...)
	s.Finished = append([]model.Activity{}, b.state.Finished...)
	if b.state.Lookup != nil {
		l := *b.state.Lookup
		s.Lookup = &l
	}
	if b.state.EditTarget != nil {
		t := *b.state.EditTarget
		s.EditTarget = &t
	}
	return s
}

// Unfinished returns a copy of the pending activities
func (b *Board) Unfinished() []model.Activity {
	return b.Snapshot().Unfinished
}

// Finished returns a copy of the completed activities
func (b *Board) Finished() []model.Activity {
	return b.Snapshot().Finished
}

// ErrorMessage returns the current transient failure message
func (b *Board) ErrorMessage() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Error
}

// OpenCreate shows the create dialog
func (b *Board) OpenCreate() {
	b.update(func(s *State) { s.CreateOpen = true })
}

// CloseCreate hides the create dialog and discards the draft
func (b *Board) CloseCreate() {
	b.update(func(s *State) {
		s.CreateOpen = false
		s.Draft = ""
	})
}

// SetDraft records the description typed in the create dialog
func (b *Board) SetDraft(description string) {
	b.update(func(s *State) { s.Draft = description })
}

// PrepareEdit opens the edit dialog on a copy of a, so cancelling
// leaves the lists untouched
func (b *Board) PrepareEdit(a model.Activity) {
	b.update(func(s *State) {
		s.EditTarget = &a
		s.EditOpen = true
	})
}

// SetEditDescription changes the working copy
func (b *Board) SetEditDescription(description string) {
	b.update(func(s *State) {
		if s.EditTarget != nil {
			s.EditTarget.Description = description
		}
	})
}

// CloseEdit hides the edit dialog and drops the working copy
func (b *Board) CloseEdit() {
	b.update(func(s *State) {
		s.EditOpen = false
		s.EditTarget = nil
	})
}

// ConfirmEdit asks for confirmation before saving the edit
func (b *Board) ConfirmEdit() {
	b.update(func(s *State) {
		s.Pending = PendingAction{Kind: ActionEdit}
		s.ConfirmOpen = true
	})
}

// ConfirmDelete asks for confirmation before deleting id
func (b *Board) ConfirmDelete(id int64) {
	b.update(func(s *State) {
		s.Pending = PendingAction{Kind: ActionDelete, ID: id}
		s.ConfirmOpen = true
	})
}

// CancelConfirmation closes the dialog without running anything
func (b *Board) CancelConfirmation() {
	b.update(func(s *State) {
		s.ConfirmOpen = false
		s.Pending = PendingAction{}
	})
}

// ExecuteConfirmed runs the pending action. The dialog closes when the
// action succeeds and stays open when it fails.
func (b *Board) ExecuteConfirmed(ctx context.Context) {
	b.mu.Lock()
	pending := b.state.Pending
	b.mu.Unlock()

	switch pending.Kind {
	case ActionEdit:
		b.Edit(ctx)
	case ActionDelete:
		b.Delete(ctx, pending.ID)
	default:
		b.CancelConfirmation()
	}
}
