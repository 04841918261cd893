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
	"reflect"
	"strconv"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/sirupsen/logrus"
)

// Attributes whose value must have the type of their variable.
var (
	fillAttrs     = map[string]bool{"missing_value": true, "_FillValue": true}
	sequenceAttrs = map[string]bool{"flag_values": true, "flag_masks": true, "valid_range": true}
	numericAttrs  = map[string]bool{"valid_min": true, "valid_max": true, "scale_factor": true, "add_offset": true}
)

// storage returns the type a variable of type t is stored as.
func storage(t conf.Type) conf.Type {
	if t == conf.Time {
		return conf.Float64
	}
	return t
}

// parseSequence parses a literal sequence such as "0, 1, 2", "[1 2 4]"
// or "(0b, 1b)".
func parseSequence(s string) ([]float64, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		x, err := parseNumber(f)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// parseNumber parses a numeric literal, accepting CDL type suffixes and
// hexadecimal integers.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		u, err := strconv.ParseUint(s[2:], 16, 64)
		return float64(u), err
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return x, nil
	}
	t := strings.TrimRight(s, "bBsSlLfFdDuU")
	if t == s || t == "" {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return strconv.ParseFloat(t, 64)
}

// varAttr converts the configured attribute a of variable v, of type t,
// to its netCDF value.
func varAttr(v string, t conf.Type, a conf.Attr, log logrus.FieldLogger) Attr {
	st := storage(t)
	if st == conf.String {
		return Attr{Name: a.Name, Value: a.Value}
	}
	switch {
	case fillAttrs[a.Name]:
		x, err := parseNumber(a.Value)
		if err != nil || !fits(x, st) {
			log.Warn(raw2l1.ErrValueConvert.Msg("variable %s: %s=%q is not a valid %s; using %g",
				v, a.Name, a.Value, st, fillValues[st]))
			x = fillValues[st]
		}
		val, _ := typed([]float64{x}, st, fillValues[st])
		return Attr{Name: a.Name, Value: val}
	case sequenceAttrs[a.Name], numericAttrs[a.Name]:
		xs, err := parseSequence(a.Value)
		if err == nil && numericAttrs[a.Name] && len(xs) != 1 {
			err = fmt.Errorf("want a single value")
		}
		if err != nil {
			log.Warn(raw2l1.ErrValueConvert.Msg("variable %s: %s=%q: %v; stored as text", v, a.Name, a.Value, err))
			return Attr{Name: a.Name, Value: a.Value}
		}
		val, bad := typed(xs, st, fillValues[st])
		if bad > 0 {
			log.Warn(raw2l1.ErrValueConvert.Msg("variable %s: %s=%q does not fit in %s", v, a.Name, a.Value, st))
		}
		return Attr{Name: a.Name, Value: val}
	}
	return Attr{Name: a.Name, Value: a.Value}
}

// fillValue returns the fill value declared for a variable, or the
// default of its type.
func fillValue(attrs []Attr, t conf.Type) float64 {
	for _, name := range []string{"_FillValue", "missing_value"} {
		for _, a := range attrs {
			if a.Name != name {
				continue
			}
			if x, ok := firstNumber(a.Value); ok {
				return x
			}
		}
	}
	return fillValues[storage(t)]
}

func firstNumber(v interface{}) (float64, bool) {
	x, ok := numbers(v)
	if !ok || len(x) == 0 {
		return 0, false
	}
	return x[0], true
}

// numbers returns the elements of a numeric slice as float64.
func numbers(v interface{}) ([]float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]float64, rv.Len())
	for i := range out {
		switch e := rv.Index(i); e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(e.Uint())
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		default:
			return nil, false
		}
	}
	return out, true
}
