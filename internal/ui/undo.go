package ui

import (
	"context"
	"errors"
	"fmt"

	"wanderlust/internal/model"
)

// maxUndoDepth bounds each history stack.
const maxUndoDepth = 50

type undoAction struct {
	label  string
	tripID string
	undo   func(ctx context.Context) error
	redo   func(ctx context.Context) error
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	if len(m.undoStack) > maxUndoDepth {
		m.undoStack = m.undoStack[len(m.undoStack)-maxUndoDepth:]
	}
	m.redoStack = nil
}

// undo and redo run in Update so history is applied in key order.
func (m *Model) undo() {
	if len(m.undoStack) == 0 {
		m.info = "Nothing to undo"
		return
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.applyUndoResult(action, "undo", action.undo(context.Background()))
}

func (m *Model) redo() {
	if len(m.redoStack) == 0 {
		m.info = "Nothing to redo"
		return
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.applyUndoResult(action, "redo", action.redo(context.Background()))
}

// buildTripEditAction resubmits the trip as it was before or after an edit.
func (m *Model) buildTripEditAction(msg model.TripEditedMsg) undoAction {
	sess := m.sess
	before := msg.Before.Clone()
	after := msg.After.Clone()
	return undoAction{
		label:  msg.Label,
		tripID: after.ID,
		undo: func(ctx context.Context) error {
			return sess.UpdateTrip(ctx, before.Clone())
		},
		redo: func(ctx context.Context) error {
			return sess.UpdateTrip(ctx, after.Clone())
		},
	}
}

// forgetTripActions drops history for a deleted trip. Deletes are not
// undoable, so nothing may resurrect the trip.
func (m *Model) forgetTripActions(tripID string) {
	keep := func(stack []undoAction) []undoAction {
		out := stack[:0]
		for _, a := range stack {
			if a.tripID != tripID {
				out = append(out, a)
			}
		}
		return out
	}
	m.undoStack = keep(m.undoStack)
	m.redoStack = keep(m.redoStack)
}

func (m *Model) applyUndoResult(action undoAction, direction string, err error) {
	// A failed save still changed the trip in memory.
	if err != nil && !errors.Is(err, model.ErrStorage) {
		m.error = fmt.Sprintf("%s failed: %v", direction, err)
		return
	}

	if direction == "undo" {
		m.redoStack = append(m.redoStack, action)
		m.info = "Undid: " + action.label
	} else {
		m.undoStack = append(m.undoStack, action)
		m.info = "Redid: " + action.label
	}
	m.error = ""
	if err != nil {
		m.error = err.Error()
	}
	m.refreshPlanner()
}
