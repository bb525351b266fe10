package services

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrMissingDateRange    = errors.New("both from and to are required")
	ErrCoordinatorNotFound = errors.New("coordinator not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrEmptyImageList      = errors.New("no images submitted")
	ErrNoImages            = errors.New("event has no images")
	ErrArchiveNotFound     = errors.New("archive not found")
)

// EventError attaches the event name to one of the errors above
type EventError struct {
	Err       error
	EventName string
}

func (e *EventError) Error() string { return fmt.Sprintf("%v: %s", e.Err, e.EventName) }
func (e *EventError) Unwrap() error { return e.Err }
