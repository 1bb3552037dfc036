/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature

import (
	"math"

	"github.com/trustbloc/epf/pkg/restapi/models"
)

// bounds accumulates the extent of ink points. The reset state is min=+Inf, max=-Inf.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b *bounds) reset() {
	b.minX, b.minY = math.Inf(1), math.Inf(1)
	b.maxX, b.maxY = math.Inf(-1), math.Inf(-1)
}

func (b *bounds) add(p Point) {
	b.minX = math.Min(b.minX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxX = math.Max(b.maxX, p.X)
	b.maxY = math.Max(b.maxY, p.Y)
}

func (b *bounds) empty() bool {
	return b.minX > b.maxX || b.minY > b.maxY
}

func (b *bounds) bbox() *models.SignatureBBox {
	if b.empty() {
		return nil
	}

	return &models.SignatureBBox{
		X:      b.minX,
		Y:      b.minY,
		Width:  b.maxX - b.minX,
		Height: b.maxY - b.minY,
	}
}

// IsValidBBox reports whether bbox can be used to place a signature: present, finite, and with
// a positive width and height.
func IsValidBBox(bbox *models.SignatureBBox) bool {
	if bbox == nil {
		return false
	}

	for _, v := range []float64{bbox.X, bbox.Y, bbox.Width, bbox.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return bbox.Width > 0 && bbox.Height > 0
}
