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
	"fmt"
	"math"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Numbers unrolls a numeric value read from a netCDF file, either a
// scalar or nested slices of any numeric type, in row-major order. It
// returns the values along with their shape; scalars have an empty shape.
func Numbers(v interface{}) ([]float64, []int, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("no values")
	}
	var (
		out   []float64
		shape []int
	)
	var walk func(rv reflect.Value, depth int) error
	walk = func(rv reflect.Value, depth int) error {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if depth == len(shape) {
				shape = append(shape, rv.Len())
			} else if depth > len(shape) || shape[depth] != rv.Len() {
				return fmt.Errorf("ragged array on axis %d", depth)
			}
			for i := 0; i < rv.Len(); i++ {
				if err := walk(rv.Index(i), depth+1); err != nil {
					return err
				}
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(rv.Uint()))
		case reflect.Float32, reflect.Float64:
			out = append(out, rv.Float())
		default:
			return fmt.Errorf("values of type %s are not numeric", rv.Type())
		}
		return nil
	}
	if err := walk(reflect.ValueOf(v), 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

// ReadVar reads the numeric variable name of g. NaN values and values
// equal to the variable's _FillValue or missing_value attribute are
// replaced by missing.
func ReadVar(g api.Group, name string, missing float64) ([]float64, []int, error) {
	v, err := g.GetVariable(name)
	if err != nil {
		return nil, nil, fmt.Errorf("variable %s: %w", name, err)
	}
	vals, shape, err := Numbers(v.Values)
	if err != nil {
		return nil, nil, fmt.Errorf("variable %s: %v", name, err)
	}
	var fills []float64
	if v.Attributes != nil {
		for _, key := range []string{"_FillValue", "missing_value"} {
			if a, ok := v.Attributes.Get(key); ok {
				if f, _, err := Numbers(a); err == nil && len(f) > 0 {
					fills = append(fills, f[0])
				}
			}
		}
	}
	for i, x := range vals {
		if math.IsNaN(x) {
			vals[i] = missing
			continue
		}
		for _, f := range fills {
			if x == f {
				vals[i] = missing
			}
		}
	}
	return vals, shape, nil
}

// StringAttr returns the attribute key of am as a string.
func StringAttr(am api.AttributeMap, key string) (string, bool) {
	if am == nil {
		return "", false
	}
	v, ok := am.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
