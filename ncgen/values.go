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

package ncgen

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/ctessum/sparse"
)

// flat is a data value unrolled in row-major order. Exactly one of nums,
// strs and times is set. Scalars have a nil shape.
type flat struct {
	nums  []float64
	strs  []string
	times []time.Time
	shape []int
}

func (f flat) len() int {
	switch {
	case f.strs != nil:
		return len(f.strs)
	case f.times != nil:
		return len(f.times)
	}
	return len(f.nums)
}

func flatten(v interface{}) (flat, error) {
	shape := raw2l1.Shape(v)
	switch t := v.(type) {
	case float64:
		return flat{nums: []float64{t}}, nil
	case float32:
		return flat{nums: []float64{float64(t)}}, nil
	case int:
		return flat{nums: []float64{float64(t)}}, nil
	case int32:
		return flat{nums: []float64{float64(t)}}, nil
	case int64:
		return flat{nums: []float64{float64(t)}}, nil
	case uint64:
		return flat{nums: []float64{float64(t)}}, nil
	case string:
		return flat{strs: []string{t}}, nil
	case time.Time:
		return flat{times: []time.Time{t}}, nil
	case []float64:
		return flat{nums: t, shape: shape}, nil
	case []float32:
		f := make([]float64, len(t))
		for i, x := range t {
			f[i] = float64(x)
		}
		return flat{nums: f, shape: shape}, nil
	case []int:
		f := make([]float64, len(t))
		for i, x := range t {
			f[i] = float64(x)
		}
		return flat{nums: f, shape: shape}, nil
	case []int32:
		f := make([]float64, len(t))
		for i, x := range t {
			f[i] = float64(x)
		}
		return flat{nums: f, shape: shape}, nil
	case []string:
		return flat{strs: t, shape: shape}, nil
	case []time.Time:
		return flat{times: t, shape: shape}, nil
	case *sparse.DenseArray:
		return flat{nums: t.Elements, shape: shape}, nil
	case *sparse.DenseArrayInt:
		f := make([]float64, len(t.Elements))
		for i, x := range t.Elements {
			f[i] = float64(x)
		}
		return flat{nums: f, shape: shape}, nil
	}
	return flat{}, fmt.Errorf("values of type %T are not supported", v)
}

// fillValues holds the default netCDF fill value of each type.
var fillValues = map[conf.Type]float64{
	conf.Int8:    -127,
	conf.UInt8:   255,
	conf.Int16:   -32767,
	conf.Int32:   -2147483647,
	conf.Int64:   -9223372036854775806,
	conf.Float32: 9.969209968386869e36,
	conf.Float64: 9.969209968386869e36,
	conf.Time:    9.969209968386869e36,
}

var typeRanges = map[conf.Type][2]float64{
	conf.Int8:    {math.MinInt8, math.MaxInt8},
	conf.UInt8:   {0, math.MaxUint8},
	conf.Int16:   {math.MinInt16, math.MaxInt16},
	conf.Int32:   {math.MinInt32, math.MaxInt32},
	conf.Int64:   {math.MinInt64, math.MaxInt64},
	conf.Float32: {-math.MaxFloat32, math.MaxFloat32},
}

// fits reports whether x can be stored in type t.
func fits(x float64, t conf.Type) bool {
	r, ok := typeRanges[t]
	if !ok {
		return true
	}
	if math.IsNaN(x) {
		return !t.IsInteger()
	}
	return x >= r[0] && x <= r[1]
}

// typed converts nums, of length n, to a slice of type t. Values that do
// not fit in t are replaced with fill; the number of replaced values is
// returned.
func typed(nums []float64, t conf.Type, fill float64) (interface{}, int) {
	bad := 0
	get := func(i int) float64 {
		x := nums[i]
		if !fits(x, t) {
			bad++
			return fill
		}
		return x
	}
	n := len(nums)
	switch t {
	case conf.Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(math.Round(get(i)))
		}
		return out, bad
	case conf.UInt8:
		out := make([]uint8, n)
		for i := range out {
			out[i] = uint8(math.Round(get(i)))
		}
		return out, bad
	case conf.Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(math.Round(get(i)))
		}
		return out, bad
	case conf.Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(math.Round(get(i)))
		}
		return out, bad
	case conf.Int64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(math.Round(get(i)))
		}
		return out, bad
	case conf.Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = float32(get(i))
		}
		return out, bad
	}
	out := make([]float64, n)
	copy(out, nums)
	return out, bad
}

// convert turns f into a flat slice of type t holding n elements. A single
// value is repeated n times.
func convert(f flat, t conf.Type, n int, fill float64) (interface{}, int, error) {
	if f.len() == 1 && n != 1 {
		f = broadcast(f, n)
	}
	if f.len() != n {
		return nil, 0, fmt.Errorf("have %d values, want %d", f.len(), n)
	}
	if t == conf.String {
		if f.strs != nil {
			return append([]string(nil), f.strs...), 0, nil
		}
		if f.nums != nil {
			out := make([]string, n)
			for i, x := range f.nums {
				out[i] = strconv.FormatFloat(x, 'g', -1, 64)
			}
			return out, 0, nil
		}
		out := make([]string, n)
		for i, x := range f.times {
			out[i] = x.UTC().Format(time.RFC3339)
		}
		return out, 0, nil
	}
	nums := f.nums
	if f.strs != nil {
		nums = make([]float64, n)
		for i, s := range f.strs {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("element %d: %q is not a number", i, s)
			}
			nums[i] = x
		}
	}
	if f.times != nil {
		return nil, 0, fmt.Errorf("time stamps can only be stored in variables of type %s", conf.Time)
	}
	v, bad := typed(nums, t, fill)
	return v, bad, nil
}

func broadcast(f flat, n int) flat {
	switch {
	case f.strs != nil:
		s := make([]string, n)
		for i := range s {
			s[i] = f.strs[0]
		}
		return flat{strs: s}
	case f.times != nil:
		s := make([]time.Time, n)
		for i := range s {
			s[i] = f.times[0]
		}
		return flat{times: s}
	}
	return flat{nums: raw2l1.Floats(n, f.nums[0])}
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
