/*
Copyright © 2026 the raw2l1 authors.
This file is part of raw2l1.

raw2l1 is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

raw2l1 is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with raw2l1.  If not, see <http://www.gnu.org/licenses/>.
*/

package codec

import (
	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ctessum/sparse"
)

// ScaleOK is the scale code of a normally calibrated record, in percent.
const ScaleOK = 100

// InvalidateRecord overwrites record i of every profile and series with
// missing when enabled is set and scale is not ok. It reports whether the
// record was invalidated.
func InvalidateRecord(i int, scale, ok float64, enabled bool, missing float64,
	profiles []*sparse.DenseArray, series [][]float64) bool {
	if !enabled || scale == ok {
		return false
	}
	for _, p := range profiles {
		raw2l1.FillRow(p, i, missing)
	}
	for _, s := range series {
		s[i] = missing
	}
	return true
}
