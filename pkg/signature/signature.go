/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signature renders freehand ink on a fixed-size drawing surface and reports, at the end of
// every stroke, the rendered image together with the bounding box of the ink.
package signature

import (
	"image"
	"image/color"

	"github.com/trustbloc/edge-core/pkg/log"
	"golang.org/x/image/vector"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

const (
	logModuleName = "epf-signature"

	// DefaultWidth is the intrinsic width of the drawing surface.
	DefaultWidth = 400
	// DefaultHeight is the intrinsic height of the drawing surface.
	DefaultHeight = 150
	// DefaultLineWidth is the width of the rendered ink.
	DefaultLineWidth = 2
)

var logger = log.New(logModuleName)

// DefaultStrokeColor is the ink color (#1a365d).
var DefaultStrokeColor = color.RGBA{R: 0x1a, G: 0x36, B: 0x5d, A: 0xff}

// Point is a position in on-screen pixel space.
type Point struct {
	X, Y float64
}

// Rect is the on-screen rectangle the drawing surface is rendered into.
type Rect struct {
	X, Y, Width, Height float64
}

// Callback receives the result of every completed stroke, or nil after a clear.
type Callback func(result *models.SignatureData)

type state int

const (
	idle state = iota
	drawing
)

// Option configures a Session.
type Option func(s *Session)

// WithSize sets the intrinsic resolution of the drawing surface.
func WithSize(width, height int) Option {
	return func(s *Session) {
		s.width = width
		s.height = height
	}
}

// WithStrokeColor sets the ink color.
func WithStrokeColor(c color.Color) Option {
	return func(s *Session) {
		s.strokeColor = c
	}
}

// WithLineWidth sets the ink width in surface pixels.
func WithLineWidth(width float64) Option {
	return func(s *Session) {
		s.lineWidth = width
	}
}

// WithInitialImage preloads the surface with an image given as a data URI.
func WithInitialImage(dataURI string) Option {
	return func(s *Session) {
		s.initialImage = dataURI
	}
}

// WithCrossStrokeBounds makes the bounding box cover the ink of every stroke since the last clear.
// By default the box only covers the most recent stroke.
func WithCrossStrokeBounds(enabled bool) Option {
	return func(s *Session) {
		s.crossStrokeBounds = enabled
	}
}

// WithLayout sets the on-screen rectangle the surface is displayed in.
func WithLayout(layout Rect) Option {
	return func(s *Session) {
		s.layout = layout
	}
}

// Session is one drawing surface and the stroke state machine bound to it.
// A Session is not safe for concurrent use.
type Session struct {
	onChange          Callback
	width             int
	height            int
	strokeColor       color.Color
	lineWidth         float64
	initialImage      string
	crossStrokeBounds bool
	layout            Rect

	canvas  *image.RGBA
	raster  vector.Rasterizer
	state   state
	last    Point
	bounds  bounds
	strokes int
	hasInk  bool
}

// New creates a Session. onChange may be nil.
func New(onChange Callback, opts ...Option) *Session {
	s := &Session{
		onChange:    onChange,
		width:       DefaultWidth,
		height:      DefaultHeight,
		strokeColor: DefaultStrokeColor,
		lineWidth:   DefaultLineWidth,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.layout == (Rect{}) {
		s.layout = Rect{Width: float64(s.width), Height: float64(s.height)}
	}

	s.canvas = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	s.bounds.reset()

	if s.initialImage != "" {
		s.preload(s.initialImage)
	}

	return s
}

// SetLayout updates the on-screen rectangle, e.g. after the surface was resized.
func (s *Session) SetLayout(layout Rect) {
	s.layout = layout
}

// PointerDown starts a stroke at the given on-screen position.
func (s *Session) PointerDown(x, y float64) {
	s.start(s.toSurface(Point{X: x, Y: y}))
}

// PointerMove extends the current stroke. It is ignored unless a stroke is in progress.
func (s *Session) PointerMove(x, y float64) {
	s.move(s.toSurface(Point{X: x, Y: y}))
}

// PointerUp ends the current stroke.
func (s *Session) PointerUp() {
	s.end()
}

// PointerLeave ends the current stroke when the pointer leaves the surface.
func (s *Session) PointerLeave() {
	s.end()
}

// TouchStart starts a stroke at the first touch point. Additional touches are ignored.
func (s *Session) TouchStart(touches []Point) {
	if len(touches) == 0 {
		return
	}

	s.start(s.toSurface(touches[0]))
}

// TouchMove extends the current stroke to the first touch point.
func (s *Session) TouchMove(touches []Point) {
	if len(touches) == 0 {
		return
	}

	s.move(s.toSurface(touches[0]))
}

// TouchEnd ends the current stroke.
func (s *Session) TouchEnd() {
	s.end()
}

// Clear erases the surface, resets the bounding box and reports a nil result.
func (s *Session) Clear() {
	s.canvas = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	s.bounds.reset()
	s.state = idle
	s.strokes = 0
	s.hasInk = false

	s.emit(nil)
}

// HasInk reports whether anything has been drawn or preloaded since the last clear.
func (s *Session) HasInk() bool {
	return s.hasInk
}

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool {
	return s.state == drawing
}

// BoundingBox returns the current bounding box, or nil if no stroke point has been recorded.
func (s *Session) BoundingBox() *models.SignatureBBox {
	return s.bounds.bbox()
}

// Image returns the drawing surface.
func (s *Session) Image() image.Image {
	return s.canvas
}

// DataURI returns the drawing surface as a PNG data URI.
func (s *Session) DataURI() (string, error) {
	return encodePNGDataURI(s.canvas)
}

func (s *Session) toSurface(p Point) Point {
	scaleX, scaleY := 1.0, 1.0

	if s.layout.Width > 0 {
		scaleX = float64(s.width) / s.layout.Width
	}

	if s.layout.Height > 0 {
		scaleY = float64(s.height) / s.layout.Height
	}

	return Point{X: (p.X - s.layout.X) * scaleX, Y: (p.Y - s.layout.Y) * scaleY}
}

func (s *Session) start(p Point) {
	if !isFinite(p) {
		logger.Debugf("Ignoring stroke start at a non-finite position")

		return
	}

	if !s.crossStrokeBounds || s.strokes == 0 {
		s.bounds.reset()
	}

	s.state = drawing
	s.strokes++
	s.last = p
	s.bounds.add(p)

	s.drawSegment(p, p)
	s.hasInk = true
}

func (s *Session) move(p Point) {
	if s.state != drawing {
		return
	}

	if !isFinite(p) {
		logger.Debugf("Ignoring stroke move to a non-finite position")

		return
	}

	s.bounds.add(p)

	s.drawSegment(s.last, p)
	s.last = p
}

func (s *Session) end() {
	if s.state != drawing {
		return
	}

	s.state = idle

	bbox := s.bounds.bbox()
	if bbox == nil {
		return
	}

	dataURI, err := s.DataURI()
	if err != nil {
		logger.Warnf("Failed to export signature image: %s", err)

		return
	}

	s.emit(&models.SignatureData{Image: dataURI, BBox: bbox})
}

func (s *Session) emit(result *models.SignatureData) {
	if s.onChange != nil {
		s.onChange(result)
	}
}
