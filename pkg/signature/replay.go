/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature

import (
	"errors"
	"fmt"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

// EventType names a recorded input event.
type EventType string

// Input event types.
const (
	PointerDownEvent  EventType = "pointerdown"
	PointerMoveEvent  EventType = "pointermove"
	PointerUpEvent    EventType = "pointerup"
	PointerLeaveEvent EventType = "pointerleave"
	TouchStartEvent   EventType = "touchstart"
	TouchMoveEvent    EventType = "touchmove"
	TouchEndEvent     EventType = "touchend"
	ClearEvent        EventType = "clear"
)

const (
	// MaxSurfaceSide is the largest intrinsic width or height accepted by Replay.
	MaxSurfaceSide = 4096
	// MaxReplayEvents is the largest number of events accepted by Replay.
	MaxReplayEvents = 4096
)

var (
	// ErrUnknownEventType is returned by Handle for an event type it does not recognize.
	ErrUnknownEventType = errors.New("unknown signature event type")
	// ErrInvalidSize is returned by Replay when the requested surface size is out of range.
	ErrInvalidSize = errors.New("signature surface size out of range")
	// ErrTooManyEvents is returned by Replay when the gesture holds more than MaxReplayEvents events.
	ErrTooManyEvents = errors.New("too many signature events")
)

// Event is a single input event in on-screen coordinates.
type Event struct {
	Type    EventType
	X, Y    float64
	Touches []Point
}

// Handle dispatches an event to the matching input method.
func (s *Session) Handle(e Event) error {
	switch e.Type {
	case PointerDownEvent:
		s.PointerDown(e.X, e.Y)
	case PointerMoveEvent:
		s.PointerMove(e.X, e.Y)
	case PointerUpEvent:
		s.PointerUp()
	case PointerLeaveEvent:
		s.PointerLeave()
	case TouchStartEvent:
		s.TouchStart(e.Touches)
	case TouchMoveEvent:
		s.TouchMove(e.Touches)
	case TouchEndEvent:
		s.TouchEnd()
	case ClearEvent:
		s.Clear()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventType, e.Type)
	}

	return nil
}

// Replay runs a recorded gesture through a fresh Session and returns the last result it reported.
// The result is nil if nothing was reported or the last report was a clear.
func Replay(req *models.SignatureReplayRequest) (*models.SignatureData, error) {
	width, height := req.Width, req.Height
	if width == 0 {
		width = DefaultWidth
	}

	if height == 0 {
		height = DefaultHeight
	}

	if width < 0 || height < 0 || width > MaxSurfaceSide || height > MaxSurfaceSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	if len(req.Events) > MaxReplayEvents {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEvents, len(req.Events))
	}

	var result *models.SignatureData

	opts := []Option{
		WithSize(width, height),
		WithCrossStrokeBounds(req.CrossStrokeBounds),
		WithLayout(Rect{Width: req.RenderedWidth, Height: req.RenderedHeight}),
	}

	if req.InitialImage != "" {
		opts = append(opts, WithInitialImage(req.InitialImage))
	}

	session := New(func(r *models.SignatureData) { result = r }, opts...)

	for i, e := range req.Events {
		event := Event{Type: EventType(e.Type), X: e.X, Y: e.Y}

		for _, touch := range e.Touches {
			event.Touches = append(event.Touches, Point{X: touch.X, Y: touch.Y})
		}

		if err := session.Handle(event); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	return result, nil
}
