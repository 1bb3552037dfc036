/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // preloaded images may be JPEG
	"image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/trustbloc/epf/pkg/epfutils"
	"github.com/trustbloc/epf/pkg/restapi/models"
)

const (
	pngMIMEType = "image/png"

	capSegments = 24
)

// ErrInvalidBBox is returned by Crop when the bounding box is missing or not finite.
var ErrInvalidBBox = errors.New("signature bounding box is missing or not finite")

// drawSegment strokes a line from a to b with round caps. A zero-length segment draws a dot.
// Only the part of the segment within a line width of the surface is drawn.
func (s *Session) drawSegment(a, b Point) {
	if s.lineWidth <= 0 || s.width <= 0 || s.height <= 0 {
		return
	}

	r := s.lineWidth / 2

	a, b, ok := clipSegment(a, b, -r, -r, float64(s.width)+r, float64(s.height)+r)
	if !ok {
		return
	}

	s.fill(circle(a, r))

	if a == b {
		return
	}

	s.fill(circle(b, r))

	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	nx, ny := -dy/length*r, dx/length*r

	s.fill([]Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	})
}

// clipSegment cuts the segment a-b down to the given rectangle. It reports false when no part of
// the segment lies inside or when the segment is not finite.
func clipSegment(a, b Point, minX, minY, maxX, maxY float64) (Point, Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	if !isFinite(a) || !isFinite(b) || !isFinite(Point{X: dx, Y: dy}) {
		return a, b, false
	}

	t0, t1 := 0.0, 1.0

	for _, edge := range [][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	} {
		p, q := edge[0], edge[1]

		switch {
		case p == 0:
			if q < 0 {
				return a, b, false
			}
		case p < 0:
			t0 = math.Max(t0, q/p)
		default:
			t1 = math.Min(t1, q/p)
		}

		if t0 > t1 {
			return a, b, false
		}
	}

	clippedA, clippedB := a, b

	if t0 > 0 {
		clippedA = Point{X: a.X + t0*dx, Y: a.Y + t0*dy}
	}

	if t1 < 1 {
		clippedB = Point{X: a.X + t1*dx, Y: a.Y + t1*dy}
	}

	return clippedA, clippedB, true
}

func isFinite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// fill rasterizes a closed polygon in the stroke color onto the surface. The rasterizer only
// covers the pixels under the polygon.
func (s *Session) fill(polygon []Point) {
	area := polygonBounds(polygon).Intersect(s.canvas.Bounds())
	if area.Empty() {
		return
	}

	z := &s.raster
	z.Reset(area.Dx(), area.Dy())
	z.DrawOp = draw.Over

	offX, offY := float64(area.Min.X), float64(area.Min.Y)

	z.MoveTo(float32(polygon[0].X-offX), float32(polygon[0].Y-offY))

	for _, p := range polygon[1:] {
		z.LineTo(float32(p.X-offX), float32(p.Y-offY))
	}

	z.ClosePath()
	z.Draw(s.canvas, area, image.NewUniform(s.strokeColor), image.Point{})
}

// polygonBounds returns the smallest pixel rectangle holding every vertex. Vertices are finite
// and lie near the surface.
func polygonBounds(polygon []Point) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range polygon {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}

	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

func circle(center Point, r float64) []Point {
	points := make([]Point, capSegments)

	for i := range points {
		theta := 2 * math.Pi * float64(i) / capSegments
		points[i] = Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
	}

	return points
}

// preload draws an initial image at the surface origin without touching the bounding box.
// An unreadable image leaves the surface blank.
func (s *Session) preload(dataURI string) {
	img, err := decodeDataURIImage(dataURI)
	if err != nil {
		logger.Warnf("Ignoring initial signature image: %s", err)

		return
	}

	draw.Draw(s.canvas, s.canvas.Bounds(), img, img.Bounds().Min, draw.Over)
	s.hasInk = true
}

func decodeDataURIImage(dataURI string) (image.Image, error) {
	_, data, err := epfutils.ParseDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}

func encodePNGDataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}

	return epfutils.EncodeDataURI(pngMIMEType, data), nil
}

// Crop cuts the signature image down to its bounding box. Coordinates are truncated to whole
// pixels and the size is clamped to at least 1x1. Areas outside the source image are transparent.
func Crop(sig *models.SignatureData) (*image.RGBA, error) {
	if sig == nil || sig.BBox == nil {
		return nil, ErrInvalidBBox
	}

	for _, v := range []float64{sig.BBox.X, sig.BBox.Y, sig.BBox.Width, sig.BBox.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrInvalidBBox
		}
	}

	src, err := decodeDataURIImage(sig.Image)
	if err != nil {
		return nil, err
	}

	x, y := int(sig.BBox.X), int(sig.BBox.Y)

	w, h := int(sig.BBox.Width), int(sig.BBox.Height)
	if w < 1 {
		w = 1
	}

	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min.Add(image.Pt(x, y)), draw.Src)

	return dst, nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}
