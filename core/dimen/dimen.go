// Package dimen implements design units and layout dimensions.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dimen

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// DU is a dimension in font design units. Shaping engines and font metrics
// report in DU; the layout converts DU to output units with Scale.
type DU int32

// DefaultUnitsPerEm is used whenever a font does not report a sensible value.
const DefaultUnitsPerEm = 1000

// Stringer implementation.
func (d DU) String() string {
	return fmt.Sprintf("%ddu", int32(d))
}

// Scale returns the factor to convert design units of a font with `upem`
// units per em to output units for a font size of `size` output units.
// A `upem` of 0 or less is replaced by DefaultUnitsPerEm; clients which
// cannot tell a font's units per em should not rely on the result.
func Scale(upem int, size float64) float64 {
	if upem <= 0 {
		upem = DefaultUnitsPerEm
	}
	return size / float64(upem)
}

// Float converts d to output units, using a scale factor as returned by Scale.
func (d DU) Float(scale float64) float64 {
	return float64(d) * scale
}

// Min returns the smaller of two dimensions.
func Min(a, b DU) DU {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of two dimensions.
func Max(a, b DU) DU {
	if a > b {
		return a
	}
	return b
}

// --- Rectangles ------------------------------------------------------------

// Rect is an axis-aligned rectangle in output units, y pointing up.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect returns a rectangle which will be replaced by the first point or
// rectangle it is extended with.
func EmptyRect() Rect {
	return Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty is true for a rectangle which has not been extended yet.
func (r Rect) IsEmpty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// Width returns the width of a rectangle.
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxX - r.MinX
}

// Height returns the height of a rectangle.
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.MaxY - r.MinY
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	if o.IsEmpty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX), MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX), MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// Include returns the smallest rectangle containing r and the point (x,y).
func (r Rect) Include(x, y float64) Rect {
	return r.Union(Rect{MinX: x, MinY: y, MaxX: x, MaxY: y})
}

// ---------------------------------------------------------------------------

var dimenPattern = regexp.MustCompile(`^([+\-]?[0-9]+(?:\.[0-9]+)?)(px|pt|PX|PT)?$`)

// ParseSize parses a font size like "36", "36px" or "27pt" and returns it in
// pixels (1pt = 4/3px).
func ParseSize(s string) (float64, error) {
	d := dimenPattern.FindStringSubmatch(s)
	if len(d) < 2 {
		return 0, errors.New("format error parsing size")
	}
	n, err := strconv.ParseFloat(d[1], 64)
	if err != nil {
		return 0, errors.New("format error parsing size")
	}
	if len(d) > 2 && (d[2] == "pt" || d[2] == "PT") {
		n = n * 4 / 3
	}
	return n, nil
}
