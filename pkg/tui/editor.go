package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-hstore/internal/logging"
	"github.com/goliatone/go-hstore/pkg/interfaces"
	"github.com/goliatone/go-hstore/pkg/model"
	"github.com/goliatone/go-hstore/pkg/widget"
)

// Menu entries shown by the editor.
const (
	ActionAdd     = "Add row"
	ActionEdit    = "Edit row"
	ActionRemove  = "Remove row"
	ActionShowRaw = "Show raw JSON"
	ActionEditRaw = "Edit raw JSON"
	ActionShowRow = "Show rows"
	ActionDone    = "Done"
)

// Session is the widget surface the editor drives. *widget.Instance
// satisfies it.
type Session interface {
	FieldName() string
	Rows() []model.Row
	RawValue() string
	State() widget.View
	AddRow() error
	RemoveRow(idx int) error
	EditKey(idx int, key string) error
	EditValue(idx int, value string) error
	EditRaw(text string) error
	Toggle() (widget.View, error)
}

// Editor edits one hstore widget from the terminal.
type Editor struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
	logger interfaces.Logger
}

// New constructs an Editor backed by survey unless a driver is supplied.
func New(options ...Option) *Editor {
	e := &Editor{}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.out)
	}
	e.logger = logging.Or(e.logger)
	return e
}

// Run loops over the editing menu until the user picks Done and returns the
// final raw value. Leaving from the raw view validates the text first; an
// invalid document keeps the loop going.
func (e *Editor) Run(ctx context.Context, session Session) (string, error) {
	if session == nil {
		return "", errors.New("tui: session is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := e.summary(ctx, session); err != nil {
			return "", err
		}

		actions := e.actions(session)
		idx, err := e.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("%s:", session.FieldName()),
			Options: actions,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(actions) {
			return "", ErrNoSelection
		}

		action := actions[idx]
		e.logger.Debug("hstore editor action", "field", session.FieldName(), "action", action)

		switch action {
		case ActionDone:
			if session.State() == widget.ViewRaw {
				if ok, err := e.toggle(ctx, session); err != nil || !ok {
					if err != nil {
						return "", err
					}
					continue
				}
			}
			return session.RawValue(), nil
		case ActionAdd:
			err = e.addRow(ctx, session)
		case ActionEdit:
			err = e.editRow(ctx, session)
		case ActionRemove:
			err = e.removeRow(ctx, session)
		case ActionShowRaw, ActionShowRow:
			_, err = e.toggle(ctx, session)
		case ActionEditRaw:
			err = e.editRaw(ctx, session)
		}
		if err != nil {
			return "", err
		}
	}
}

func (e *Editor) actions(session Session) []string {
	if session.State() == widget.ViewRaw {
		return []string{ActionEditRaw, ActionShowRow, ActionDone}
	}
	actions := []string{ActionAdd}
	if len(session.Rows()) > 0 {
		actions = append(actions, ActionEdit, ActionRemove)
	}
	return append(actions, ActionShowRaw, ActionDone)
}

func (e *Editor) summary(ctx context.Context, session Session) error {
	if session.State() == widget.ViewRaw {
		return e.info(ctx, session.RawValue())
	}
	rows := session.Rows()
	if len(rows) == 0 {
		return e.info(ctx, "(no rows)")
	}
	return e.info(ctx, strings.Join(rowLabels(rows), "\n"))
}

func (e *Editor) addRow(ctx context.Context, session Session) error {
	key, err := e.driver.Input(ctx, InputConfig{Message: "Key:"})
	if err != nil {
		return err
	}
	value, err := e.driver.Input(ctx, InputConfig{Message: "Value:"})
	if err != nil {
		return err
	}
	if err := session.AddRow(); err != nil {
		return err
	}
	idx := len(session.Rows()) - 1
	if err := session.EditKey(idx, key); err != nil {
		return err
	}
	return session.EditValue(idx, value)
}

func (e *Editor) editRow(ctx context.Context, session Session) error {
	rows := session.Rows()
	idx, err := e.pickRow(ctx, "Edit which row?", rows)
	if err != nil {
		return err
	}
	key, err := e.driver.Input(ctx, InputConfig{Message: "Key:", Default: rows[idx].Key})
	if err != nil {
		return err
	}
	value, err := e.driver.Input(ctx, InputConfig{Message: "Value:", Default: rows[idx].Value})
	if err != nil {
		return err
	}
	if err := session.EditKey(idx, key); err != nil {
		return err
	}
	return session.EditValue(idx, value)
}

func (e *Editor) removeRow(ctx context.Context, session Session) error {
	rows := session.Rows()
	idx, err := e.pickRow(ctx, "Remove which row?", rows)
	if err != nil {
		return err
	}
	ok, err := e.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Remove %s?", rowLabel(rows[idx])),
	})
	if err != nil || !ok {
		return err
	}
	return session.RemoveRow(idx)
}

func (e *Editor) editRaw(ctx context.Context, session Session) error {
	text, err := e.driver.TextArea(ctx, TextAreaConfig{
		Message: "Raw JSON:",
		Default: session.RawValue(),
	})
	if err != nil {
		return err
	}
	return session.EditRaw(text)
}

// toggle switches views and reports invalid JSON to the user instead of
// failing the loop.
func (e *Editor) toggle(ctx context.Context, session Session) (bool, error) {
	if _, err := session.Toggle(); err != nil {
		if widget.IsInvalidJSON(err) {
			return false, e.fail(ctx, err.Error())
		}
		return false, err
	}
	return true, nil
}

func (e *Editor) pickRow(ctx context.Context, message string, rows []model.Row) (int, error) {
	idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: rowLabels(rows)})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(rows) {
		return 0, ErrNoSelection
	}
	return idx, nil
}

func (e *Editor) info(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.InfoPrefix+msg)
}

func (e *Editor) fail(ctx context.Context, msg string) error {
	return e.driver.Info(ctx, e.theme.ErrorPrefix+msg)
}

func rowLabels(rows []model.Row) []string {
	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = fmt.Sprintf("%d. %s", i+1, rowLabel(row))
	}
	return labels
}

func rowLabel(row model.Row) string {
	return fmt.Sprintf("%q = %q", row.Key, row.Value)
}
