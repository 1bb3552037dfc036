/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/epf/pkg/epfutils"
	"github.com/trustbloc/epf/pkg/restapi/models"
)

type recorder struct {
	results []*models.SignatureData
}

func (r *recorder) onChange(result *models.SignatureData) {
	r.results = append(r.results, result)
}

func (r *recorder) last() *models.SignatureData {
	return r.results[len(r.results)-1]
}

func decodeResultImage(t *testing.T, result *models.SignatureData) image.Image {
	t.Helper()

	mimeType, data, err := epfutils.ParseDataURI(result.Image)
	require.NoError(t, err)
	require.Equal(t, "image/png", mimeType)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	return img
}

func TestNew(t *testing.T) {
	t.Run("Success: defaults", func(t *testing.T) {
		s := New(nil)

		require.Equal(t, image.Rect(0, 0, DefaultWidth, DefaultHeight), s.Image().Bounds())
		require.False(t, s.HasInk())
		require.False(t, s.Drawing())
		require.Nil(t, s.BoundingBox())
	})
	t.Run("Success: custom size", func(t *testing.T) {
		s := New(nil, WithSize(200, 80))

		require.Equal(t, image.Rect(0, 0, 200, 80), s.Image().Bounds())
	})
}

func TestSession_Stroke(t *testing.T) {
	t.Run("Success: result reported at the end of the stroke", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.PointerDown(10, 10)
		s.PointerMove(100, 10)
		require.True(t, s.Drawing())
		require.Empty(t, rec.results)

		s.PointerMove(100, 60)
		s.PointerUp()

		require.False(t, s.Drawing())
		require.True(t, s.HasInk())
		require.Len(t, rec.results, 1)
		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10, Width: 90, Height: 50}, rec.last().BBox)
		require.True(t, IsValidBBox(rec.last().BBox))

		img := decodeResultImage(t, rec.last())
		require.Equal(t, image.Rect(0, 0, DefaultWidth, DefaultHeight), img.Bounds())

		_, _, _, inked := img.At(50, 10).RGBA()
		require.NotZero(t, inked)

		_, _, _, blank := img.At(300, 120).RGBA()
		require.Zero(t, blank)
	})
	t.Run("Success: bbox contains every visited point", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		points := []Point{{X: 50, Y: 70}, {X: 20, Y: 90}, {X: 130, Y: 15}, {X: 80, Y: 140}, {X: 60, Y: 60}}

		s.PointerDown(points[0].X, points[0].Y)

		for _, p := range points[1:] {
			s.PointerMove(p.X, p.Y)
		}

		s.PointerUp()

		bbox := rec.last().BBox
		for _, p := range points {
			require.GreaterOrEqual(t, p.X, bbox.X)
			require.LessOrEqual(t, p.X, bbox.X+bbox.Width)
			require.GreaterOrEqual(t, p.Y, bbox.Y)
			require.LessOrEqual(t, p.Y, bbox.Y+bbox.Height)
		}

		require.Equal(t, &models.SignatureBBox{X: 20, Y: 15, Width: 110, Height: 125}, bbox)
	})
	t.Run("Success: a tap yields a degenerate bbox", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.PointerDown(30, 40)
		s.PointerUp()

		require.Len(t, rec.results, 1)
		require.Equal(t, &models.SignatureBBox{X: 30, Y: 40}, rec.last().BBox)
		require.False(t, IsValidBBox(rec.last().BBox))

		_, _, _, dot := decodeResultImage(t, rec.last()).At(30, 40).RGBA()
		require.NotZero(t, dot)
	})
	t.Run("Success: pointer leave ends the stroke", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.PointerDown(10, 10)
		s.PointerMove(20, 20)
		s.PointerLeave()

		require.Len(t, rec.results, 1)
		require.False(t, s.Drawing())
	})
	t.Run("Ignored: move, up and leave while idle", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.PointerMove(10, 10)
		s.PointerUp()
		s.PointerLeave()

		require.Empty(t, rec.results)
		require.False(t, s.HasInk())
		require.Nil(t, s.BoundingBox())
	})
	t.Run("Success: nil callback", func(t *testing.T) {
		s := New(nil)

		s.PointerDown(10, 10)
		s.PointerMove(20, 20)
		s.PointerUp()
		s.Clear()

		require.False(t, s.HasInk())
	})
}

func TestSession_MultipleStrokes(t *testing.T) {
	drawTwoStrokes := func(s *Session) {
		s.PointerDown(10, 10)
		s.PointerMove(50, 40)
		s.PointerUp()

		s.PointerDown(200, 100)
		s.PointerMove(250, 120)
		s.PointerUp()
	}

	t.Run("Default: bbox covers the most recent stroke only", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		drawTwoStrokes(s)

		require.Len(t, rec.results, 2)
		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10, Width: 40, Height: 30}, rec.results[0].BBox)
		require.Equal(t, &models.SignatureBBox{X: 200, Y: 100, Width: 50, Height: 20}, rec.results[1].BBox)
	})
	t.Run("Cross-stroke bounds: bbox covers all strokes", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange, WithCrossStrokeBounds(true))

		drawTwoStrokes(s)

		require.Len(t, rec.results, 2)
		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10, Width: 240, Height: 110}, rec.results[1].BBox)
	})
	t.Run("Cross-stroke bounds: clear starts a fresh range", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange, WithCrossStrokeBounds(true))

		drawTwoStrokes(s)
		s.Clear()

		s.PointerDown(100, 50)
		s.PointerMove(110, 70)
		s.PointerUp()

		require.Equal(t, &models.SignatureBBox{X: 100, Y: 50, Width: 10, Height: 20}, rec.last().BBox)
	})
}

func TestSession_CoordinateMapping(t *testing.T) {
	t.Run("Success: scaled and offset layout", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange, WithLayout(Rect{X: 10, Y: 20, Width: 200, Height: 75}))

		s.PointerDown(10, 20)
		s.PointerMove(110, 57.5)
		s.PointerUp()

		require.Equal(t, &models.SignatureBBox{X: 0, Y: 0, Width: 200, Height: 75}, rec.last().BBox)
	})
	t.Run("Success: layout updated after a resize", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.SetLayout(Rect{Width: 800, Height: 300})

		s.PointerDown(100, 100)
		s.PointerMove(300, 200)
		s.PointerUp()

		require.Equal(t, &models.SignatureBBox{X: 50, Y: 50, Width: 100, Height: 50}, rec.last().BBox)
	})
	t.Run("Success: zero rendered size means no scaling", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange, WithLayout(Rect{X: 5, Y: 5}))

		s.PointerDown(15, 25)
		s.PointerMove(35, 45)
		s.PointerUp()

		require.Equal(t, &models.SignatureBBox{X: 10, Y: 20, Width: 20, Height: 20}, rec.last().BBox)
	})
}

func TestSession_Touch(t *testing.T) {
	t.Run("Success: first touch point only", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.TouchStart([]Point{{X: 10, Y: 10}, {X: 390, Y: 140}})
		s.TouchMove([]Point{{X: 60, Y: 30}, {X: 0, Y: 0}})
		s.TouchEnd()

		require.Len(t, rec.results, 1)
		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10, Width: 50, Height: 20}, rec.last().BBox)
	})
	t.Run("Ignored: empty touch lists", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.TouchStart(nil)
		require.False(t, s.Drawing())

		s.TouchStart([]Point{{X: 10, Y: 10}})
		s.TouchMove([]Point{})
		s.TouchEnd()

		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10}, rec.last().BBox)
	})
}

func TestSession_FarPoints(t *testing.T) {
	t.Run("Success: far end clipped to the surface", func(t *testing.T) {
		for _, x := range []float64{1e9, 1e12, math.MaxFloat64} {
			rec := &recorder{}
			s := New(rec.onChange)

			require.NotPanics(t, func() {
				s.PointerDown(10, 10)
				s.PointerMove(x, 20)
				s.PointerUp()
			})

			require.Len(t, rec.results, 1)
			require.Equal(t, &models.SignatureBBox{X: 10, Y: 10, Width: x - 10, Height: 10}, rec.last().BBox)

			_, _, _, inked := s.Image().At(200, 10).RGBA()
			require.NotZero(t, inked)
		}
	})

	t.Run("Success: segment entirely off the surface", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		s.PointerDown(-1e9, -1e9)
		s.PointerMove(-1e9, 1e9)
		s.PointerUp()

		require.Equal(t, &models.SignatureBBox{X: -1e9, Y: -1e9, Width: 0, Height: 2e9}, rec.last().BBox)

		for _, p := range []image.Point{{X: 0, Y: 0}, {X: 0, Y: 75}, {X: 200, Y: 75}} {
			_, _, _, a := s.Image().At(p.X, p.Y).RGBA()
			require.Zero(t, a)
		}
	})
	t.Run("Ignored: non-finite positions", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange)

		require.NotPanics(t, func() {
			s.PointerDown(math.NaN(), 10)
			s.PointerUp()
		})
		require.False(t, s.HasInk())
		require.Empty(t, rec.results)

		require.NotPanics(t, func() {
			s.PointerDown(10, 10)
			s.PointerMove(math.NaN(), 20)
			s.PointerMove(math.Inf(1), 20)
			s.PointerMove(30, math.Inf(-1))
			s.PointerUp()
		})
		require.Len(t, rec.results, 1)
		require.Equal(t, &models.SignatureBBox{X: 10, Y: 10}, rec.last().BBox)
	})
}

func TestSession_Clear(t *testing.T) {
	rec := &recorder{}
	s := New(rec.onChange)

	s.PointerDown(10, 10)
	s.PointerMove(100, 100)
	s.PointerUp()

	s.Clear()

	require.Len(t, rec.results, 2)
	require.Nil(t, rec.last())
	require.False(t, s.HasInk())
	require.Nil(t, s.BoundingBox())

	_, _, _, a := s.Image().At(50, 50).RGBA()
	require.Zero(t, a)

	s.PointerDown(300, 120)
	s.PointerMove(310, 130)
	s.PointerUp()

	require.Equal(t, &models.SignatureBBox{X: 300, Y: 120, Width: 10, Height: 10}, rec.last().BBox)
}

func TestSession_Preload(t *testing.T) {
	initial := image.NewRGBA(image.Rect(0, 0, 20, 20))
	initial.Set(5, 5, color.RGBA{A: 0xff})

	data, err := EncodePNG(initial)
	require.NoError(t, err)

	t.Run("Success: image drawn without a bbox", func(t *testing.T) {
		rec := &recorder{}
		s := New(rec.onChange, WithInitialImage(epfutils.EncodeDataURI("image/png", data)))

		require.True(t, s.HasInk())
		require.Nil(t, s.BoundingBox())
		require.Empty(t, rec.results)

		_, _, _, a := s.Image().At(5, 5).RGBA()
		require.NotZero(t, a)
	})
	t.Run("Ignored: unreadable image", func(t *testing.T) {
		s := New(nil, WithInitialImage("data:image/png;base64,AQID"))

		require.False(t, s.HasInk())
	})
	t.Run("Ignored: not a data URI", func(t *testing.T) {
		s := New(nil, WithInitialImage("signature.png"))

		require.False(t, s.HasInk())
	})
}

func TestSession_StrokeStyle(t *testing.T) {
	rec := &recorder{}
	s := New(rec.onChange, WithStrokeColor(color.RGBA{R: 0xff, A: 0xff}), WithLineWidth(6))

	s.PointerDown(50, 50)
	s.PointerMove(150, 50)
	s.PointerUp()

	r, g, b, a := s.Image().At(100, 52).RGBA()
	require.InDelta(t, 0xffff, r, 0x100)
	require.Zero(t, g)
	require.Zero(t, b)
	require.InDelta(t, 0xffff, a, 0x100)

	_, _, _, outside := s.Image().At(100, 60).RGBA()
	require.Zero(t, outside)
}

func TestIsValidBBox(t *testing.T) {
	require.True(t, IsValidBBox(&models.SignatureBBox{X: 0, Y: 0, Width: 1, Height: 1}))
	require.False(t, IsValidBBox(nil))
	require.False(t, IsValidBBox(&models.SignatureBBox{Width: 0, Height: 10}))
	require.False(t, IsValidBBox(&models.SignatureBBox{Width: 10, Height: 0}))
	require.False(t, IsValidBBox(&models.SignatureBBox{Width: -1, Height: 10}))
	require.False(t, IsValidBBox(&models.SignatureBBox{X: math.NaN(), Width: 10, Height: 10}))
	require.False(t, IsValidBBox(&models.SignatureBBox{Y: math.Inf(1), Width: 10, Height: 10}))
	require.False(t, IsValidBBox(&models.SignatureBBox{Width: math.Inf(1), Height: 10}))
}
