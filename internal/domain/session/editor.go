package session

import (
	"fmt"

	"github.com/ganot/interview-etl/internal/domain/record"
	"github.com/ganot/interview-etl/internal/domain/schema"
)

// Editor tracks at most one in-progress edit against a record store.
// Like the store it edits, it is owned by a single caller.
type Editor struct {
	store RecordStore
	id    string
	draft record.Patch
}

// NewEditor creates an idle editor.
func NewEditor(store RecordStore) *Editor {
	return &Editor{store: store}
}

// State reports whether an edit is in progress.
func (e *Editor) State() State {
	if e.draft == nil {
		return StateIdle
	}
	return StateEditing
}

// EditingID returns the id under edit, or "" when idle.
func (e *Editor) EditingID() string { return e.id }

// Draft returns a copy of the draft, or nil when idle.
func (e *Editor) Draft() record.Patch {
	if e.draft == nil {
		return nil
	}
	return clonePatch(e.draft)
}

// Status returns a snapshot of the editor.
func (e *Editor) Status() Status {
	return Status{State: e.State(), EditingID: e.id, Draft: e.Draft()}
}

// BeginEdit copies the record's current values into a new draft.
func (e *Editor) BeginEdit(id string) (record.Patch, error) {
	if e.draft != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyEditing, e.id)
	}
	rec, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}

	e.id = rec.ID
	e.draft = record.Patch(rec.Fields)
	if e.draft == nil {
		e.draft = record.Patch{}
	}
	return e.Draft(), nil
}

// UpdateDraftField sets one draft value. Values are checked on Commit, so an
// invalid value can be corrected before then.
func (e *Editor) UpdateDraftField(name string, value schema.Value) error {
	if e.draft == nil {
		return ErrNotEditing
	}
	if name == schema.IDField {
		return fmt.Errorf("%w: %s is read-only", schema.ErrInvalidField, name)
	}
	if _, err := e.store.Schema().Lookup(name); err != nil {
		return err
	}
	e.draft[name] = value.Clone()
	return nil
}

// Commit writes the draft through the store. On failure the edit stays open with
// the draft intact.
func (e *Editor) Commit() (record.Record, error) {
	if e.draft == nil {
		return record.Record{}, ErrNotEditing
	}
	rec, err := e.store.UpdateRecord(e.id, clonePatch(e.draft))
	if err != nil {
		return record.Record{}, err
	}
	e.reset()
	return rec, nil
}

// Discard drops the draft without touching the store.
func (e *Editor) Discard() error {
	if e.draft == nil {
		return ErrNotEditing
	}
	e.reset()
	return nil
}

func (e *Editor) reset() {
	e.id = ""
	e.draft = nil
}

func clonePatch(p record.Patch) record.Patch {
	out := make(record.Patch, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}
