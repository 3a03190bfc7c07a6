package model

import "time"

// Activity represents a single item on the board.
// JSON names follow the remote API, which speaks Portuguese.
type Activity struct {
	ID          int64      `json:"id"`
	Description string     `json:"descricao"`
	IsDone      bool       `json:"conclusao"`
	CreatedAt   time.Time  `json:"dataCriacao"`
	CompletedAt *time.Time `json:"dataConclusao"`
}

// CreateRequest is the body of POST /create
type CreateRequest struct {
	Description string    `json:"descricao"`
	CreatedAt   time.Time `json:"dataCriacao"`
}

// EditRequest is the body of PUT /edit
type EditRequest struct {
	ID          int64  `json:"id"`
	Description string `json:"descricao"`
}

// TimeToComplete returns how long the activity stayed open, or zero if it
// is still pending
func (a Activity) TimeToComplete() time.Duration {
	if a.CompletedAt == nil || a.CreatedAt.IsZero() {
		return 0
	}
	return a.CompletedAt.Sub(a.CreatedAt)
}

// Reopened returns a copy of the activity as it looks after a revert
func (a Activity) Reopened() Activity {
	a.IsDone = false
	a.CompletedAt = nil
	return a
}
