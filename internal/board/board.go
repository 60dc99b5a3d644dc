// Package board owns the client-side task collection and the create, done
// and reload flows that keep it in step with the server.
package board

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tada-tasks/internal/model"
)

// TaskAPI is the remote service the board drives.
type TaskAPI interface {
	PostTask(ctx context.Context, t model.Task) (model.Task, error)
	PostTaskDone(ctx context.Context, t model.Task) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
}

// Action names the step of a flow that failed.
type Action string

const (
	ActionCreate Action = "create"
	ActionDone   Action = "done"
	ActionReload Action = "reload"
)

// ActionError wraps a failed step so callers can tell the user what went
// wrong and offer a retry.
type ActionError struct {
	Action Action
	Err    error
}

func (e *ActionError) Error() string { return fmt.Sprintf("%s: %v", e.Action, e.Err) }
func (e *ActionError) Unwrap() error { return e.Err }

// Snapshot is a copy of the collection tagged with the reload that produced it.
// A higher Version is always a newer server state.
type Snapshot struct {
	Version uint64
	Tasks   []model.Task
}

// Board holds the last known server state. The collection is only ever
// replaced wholesale by Reload.
type Board struct {
	api TaskAPI
	log *logrus.Entry

	mu      sync.Mutex
	tasks   []model.Task
	issued  uint64 // last reload ticket handed out
	applied uint64 // ticket of the reload currently shown
}

func New(api TaskAPI, logger *logrus.Logger) *Board {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Board{
		api:   api,
		log:   logger.WithField("component", "board"),
		tasks: []model.Task{},
	}
}

// Tasks returns a copy of the current collection.
func (b *Board) Tasks() []model.Task { return b.Snapshot().Tasks }

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Version: b.applied, Tasks: cloneTasks(b.tasks)}
}

// Reload fetches the collection and replaces the local copy. Overlapping
// reloads are ordered by start: a response is dropped if a reload that
// started later has already been applied.
func (b *Board) Reload(ctx context.Context) error {
	b.mu.Lock()
	b.issued++
	ticket := b.issued
	b.mu.Unlock()

	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		b.log.WithError(err).WithField("ticket", ticket).Warn("reload failed")
		return &ActionError{Action: ActionReload, Err: err}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if ticket <= b.applied {
		b.log.WithFields(logrus.Fields{"ticket": ticket, "applied": b.applied}).Debug("stale reload discarded")
		return nil
	}
	b.applied = ticket
	b.tasks = cloneTasks(tasks)
	b.log.WithFields(logrus.Fields{"ticket": ticket, "count": len(tasks)}).Debug("reload applied")
	return nil
}

// Submit creates the task described by f, then resets f, then reloads.
// If creation fails f is left untouched and no reload happens.
func (b *Board) Submit(ctx context.Context, f *Form) error {
	created, err := b.api.PostTask(ctx, f.Task())
	if err != nil {
		b.log.WithError(err).Warn("create failed")
		return &ActionError{Action: ActionCreate, Err: err}
	}
	b.log.WithField("id", idField(created)).Info("task created")
	f.Reset()
	return b.Reload(ctx)
}

// MarkDone completes t, then reloads. t must already have a server id.
func (b *Board) MarkDone(ctx context.Context, t model.Task) error {
	if !t.Persisted() {
		return &ActionError{Action: ActionDone, Err: model.ErrMissingID}
	}
	if _, err := b.api.PostTaskDone(ctx, t); err != nil {
		b.log.WithError(err).WithField("id", *t.ID).Warn("mark done failed")
		return &ActionError{Action: ActionDone, Err: err}
	}
	b.log.WithField("id", *t.ID).Info("task done")
	return b.Reload(ctx)
}

func cloneTasks(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		if t.ID != nil {
			id := *t.ID
			t.ID = &id
		}
		out[i] = t
	}
	return out
}

func idField(t model.Task) any {
	if t.ID == nil {
		return nil
	}
	return *t.ID
}
