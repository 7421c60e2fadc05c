package block

import (
	"context"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/blockreplace/pkg/richtext"
)

// MemoryHost is an in-process Host over a unit tree. It backs the tests
// in this module and serves as the reference for host implementors: field
// writes are atomic and each one is recorded as a single undo step.
type MemoryHost struct {
	units []*Unit
	index map[string]*Unit
	undo  []undoRecord
	ready bool
}

type undoRecord struct {
	unitID string
	field  string
	prev   richtext.Rich
}

// NewMemoryHost creates a host over the given root units. The host starts
// ready; SetReady(false) simulates an unreachable host.
func NewMemoryHost(units ...*Unit) *MemoryHost {
	h := &MemoryHost{
		units: units,
		index: map[string]*Unit{},
		ready: true,
	}
	Walk(units, func(u *Unit) {
		h.index[u.ID] = u
	})
	return h
}

// SetReady toggles host availability.
func (h *MemoryHost) SetReady(ready bool) {
	h.ready = ready
}

// ListUnits implements Host.
func (h *MemoryHost) ListUnits(ctx context.Context) ([]*Unit, error) {
	if !h.ready {
		return nil, errors.Errorf("listing units: %w", ErrHostUnavailable)
	}
	return h.units, nil
}

// GetField implements Host. Unknown units and fields read as empty.
func (h *MemoryHost) GetField(ctx context.Context, unitID, field string) (richtext.Rich, error) {
	if !h.ready {
		return richtext.Rich{}, errors.Errorf("reading field %q of unit %q: %w", field, unitID, ErrHostUnavailable)
	}
	u, ok := h.index[unitID]
	if !ok {
		return richtext.Rich{}, nil
	}
	value, _ := u.Field(field)
	return value, nil
}

// SetField implements Host. Writing to an unknown unit or field is an
// error; a successful write pushes one undo step.
func (h *MemoryHost) SetField(ctx context.Context, unitID, field string, value richtext.Rich) error {
	if !h.ready {
		return errors.Errorf("writing field %q of unit %q: %w", field, unitID, ErrHostUnavailable)
	}
	u, ok := h.index[unitID]
	if !ok {
		return errors.Errorf("unit %q not found", unitID)
	}
	for i := range u.Fields {
		if u.Fields[i].Name == field {
			h.undo = append(h.undo, undoRecord{unitID: unitID, field: field, prev: u.Fields[i].Value})
			u.Fields[i].Value = value
			return nil
		}
	}
	return errors.Errorf("unit %q has no field %q", unitID, field)
}

// Undo reverts the most recent field write. It reports whether there was
// anything to revert.
func (h *MemoryHost) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	rec := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	u := h.index[rec.unitID]
	for i := range u.Fields {
		if u.Fields[i].Name == rec.field {
			u.Fields[i].Value = rec.prev
			break
		}
	}
	return true
}
