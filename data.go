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

package raw2l1

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
)

// Canonical dimension names.
const (
	TimeDim  = "time"
	RangeDim = "range"
	LayerDim = "layer"
)

// Default missing-value sentinels.
const (
	DefaultMissingInt   = -9
	DefaultMissingFloat = -999.0
)

// Dims holds the pre-scanned size of each dimension, by name.
type Dims map[string]int

// Check returns an error if any of the named dimensions is absent or
// not strictly positive.
func (d Dims) Check(names ...string) error {
	for _, n := range names {
		s, ok := d[n]
		if !ok {
			return fmt.Errorf("dimension %q was not scanned", n)
		}
		if s <= 0 {
			return Errorf(ErrNoTimeSteps, "dimension %q has size %d", n, s)
		}
	}
	return nil
}

// Data is the data dictionary produced by a reader and consumed by the
// netCDF writer. Values are scalars (float64, int, string, time.Time) or
// fixed-shape arrays ([]float64, []int, []string, []time.Time,
// *sparse.DenseArray, *sparse.DenseArrayInt). Arrays are allocated from the
// scanned Dims before the fill pass and never grow afterwards.
type Data map[string]interface{}

// Get returns the value stored under key. A missing key means the
// configuration and the reader disagree, which is reported as ErrMissingKey.
func (d Data) Get(key string) (interface{}, error) {
	v, ok := d[key]
	if !ok {
		return nil, Errorf(ErrMissingKey, "key %q is not in the data produced by the reader", key)
	}
	return v, nil
}

// Times returns the time stamps stored under key.
func (d Data) Times(key string) ([]time.Time, error) {
	v, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	t, ok := v.([]time.Time)
	if !ok {
		return nil, fmt.Errorf("key %q holds %T, not a time series", key, v)
	}
	return t, nil
}

// CheckShape returns an error unless the value under key has one axis per
// named dimension, each of the pre-scanned size.
func (d Data) CheckShape(key string, dims Dims, names ...string) error {
	v, err := d.Get(key)
	if err != nil {
		return err
	}
	shape := Shape(v)
	if len(shape) != len(names) {
		return fmt.Errorf("key %q has %d axes, want %d %v", key, len(shape), len(names), names)
	}
	for i, n := range names {
		if shape[i] != dims[n] {
			return fmt.Errorf("key %q: axis %d has length %d, dimension %q has size %d",
				key, i, shape[i], n, dims[n])
		}
	}
	return nil
}

// Shape returns the shape of v, or nil for a scalar.
func Shape(v interface{}) []int {
	switch t := v.(type) {
	case []float64:
		return []int{len(t)}
	case []float32:
		return []int{len(t)}
	case []int:
		return []int{len(t)}
	case []int32:
		return []int{len(t)}
	case []string:
		return []int{len(t)}
	case []time.Time:
		return []int{len(t)}
	case *sparse.DenseArray:
		return append([]int(nil), t.Shape...)
	case *sparse.DenseArrayInt:
		return append([]int(nil), t.Shape...)
	}
	return nil
}

// Floats returns a slice of length n filled with missing.
func Floats(n int, missing float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = missing
	}
	return s
}

// Ints returns a slice of length n filled with missing.
func Ints(n int, missing int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = missing
	}
	return s
}

// Profiles returns a dense array with the given shape filled with missing.
func Profiles(missing float64, shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = missing
	}
	return a
}

// IntProfiles returns a dense integer array with the given shape filled
// with missing.
func IntProfiles(missing int, shape ...int) *sparse.DenseArrayInt {
	a := sparse.ZerosDenseInt(shape...)
	for i := range a.Elements {
		a.Elements[i] = missing
	}
	return a
}

// SetRow copies vals into row i of the two-dimensional array a.
// DenseArray.Set ignores zero values, so rows are written directly.
func SetRow(a *sparse.DenseArray, i int, vals []float64) {
	n := a.Shape[1]
	copy(a.Elements[i*n:(i+1)*n], vals)
}

// Row returns a view of row i of the two-dimensional array a.
func Row(a *sparse.DenseArray, i int) []float64 {
	n := a.Shape[1]
	return a.Elements[i*n : (i+1)*n]
}

// FillRow sets every element of row i of a to v.
func FillRow(a *sparse.DenseArray, i int, v float64) {
	r := Row(a, i)
	for j := range r {
		r[j] = v
	}
}
