package widget

import (
	"errors"
	"fmt"
)

type EventType string

const (
	EventClick   EventType = "click"
	EventKeydown EventType = "keydown"
)

// TargetKind names the control an event originated from.
type TargetKind string

const (
	TargetSortHeader    TargetKind = "sort-header"
	TargetFilterTrigger TargetKind = "filter-trigger"
	TargetFilterOption  TargetKind = "filter-option"
	TargetFilterApply   TargetKind = "filter-apply"
	TargetFilterClear   TargetKind = "filter-clear"
	TargetFilterClose   TargetKind = "filter-close"
	TargetFilterCancel  TargetKind = "filter-cancel"
	TargetPage          TargetKind = "page"
	TargetClearAll      TargetKind = "clear-all"
	TargetRefresh       TargetKind = "refresh"
	TargetRetry         TargetKind = "retry"
	TargetOutside       TargetKind = "outside"
)

var ErrInvalidEvent = errors.New("invalid event")

type Target struct {
	Kind   TargetKind `json:"kind"`
	Column string     `json:"column,omitempty"`
	Value  string     `json:"value,omitempty"`
	Page   int        `json:"page,omitempty"`
}

// Event is a user gesture forwarded from the rendered markup.
type Event struct {
	Type   EventType `json:"type"`
	Key    string    `json:"key,omitempty"`
	Target Target    `json:"target"`
}

// Click builds a click event on target.
func Click(target Target) Event {
	return Event{Type: EventClick, Target: target}
}

// Keydown builds a keydown event for key on target.
func Keydown(key string, target Target) Event {
	return Event{Type: EventKeydown, Key: key, Target: target}
}

// Validate checks the event shape. It does not check that columns exist.
func (e Event) Validate() error {
	switch e.Type {
	case EventClick:
		if e.Target.Kind == "" {
			return fmt.Errorf("%w: click without target", ErrInvalidEvent)
		}
	case EventKeydown:
		if e.Key == "" {
			return fmt.Errorf("%w: keydown without key", ErrInvalidEvent)
		}
		if e.Target.Kind == "" {
			return nil
		}
	default:
		return fmt.Errorf("%w: unsupported type %q", ErrInvalidEvent, e.Type)
	}

	switch e.Target.Kind {
	case TargetSortHeader, TargetFilterTrigger, TargetFilterApply, TargetFilterClear:
		if e.Target.Column == "" {
			return fmt.Errorf("%w: %s requires a column", ErrInvalidEvent, e.Target.Kind)
		}
	case TargetFilterOption:
		if e.Target.Column == "" || e.Target.Value == "" {
			return fmt.Errorf("%w: filter-option requires a column and value", ErrInvalidEvent)
		}
	case TargetFilterClose, TargetFilterCancel, TargetPage, TargetClearAll,
		TargetRefresh, TargetRetry, TargetOutside:
	default:
		return fmt.Errorf("%w: unsupported target %q", ErrInvalidEvent, e.Target.Kind)
	}
	return nil
}

func (k TargetKind) insideFilterControl() bool {
	switch k {
	case TargetFilterTrigger, TargetFilterOption, TargetFilterApply,
		TargetFilterClear, TargetFilterClose, TargetFilterCancel:
		return true
	}
	return false
}

func isActivationKey(key string) bool {
	switch key {
	case "Enter", " ", "Space", "Spacebar":
		return true
	}
	return false
}

func isEscapeKey(key string) bool {
	return key == "Escape" || key == "Esc"
}
