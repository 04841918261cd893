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
	"io/ioutil"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/sirupsen/logrus"
)

// HistoryRef is the global attribute value replaced with a history stamp.
const HistoryRef = "$HISTORY$"

// DefaultTimeUnits is used for time variables without a units attribute.
const DefaultTimeUnits = "seconds since 1970-01-01 00:00:00"

// Options holds the settings of Build.
type Options struct {
	// Now is the creation time written in the history stamp.
	Now time.Time

	Log logrus.FieldLogger
}

// History returns the history stamp of a file created at now.
func History(now time.Time) string {
	return fmt.Sprintf("%s UTC: file created with raw2l1 %s", now.UTC().Format("2006-01-02 15:04:05"), raw2l1.Version)
}

func isRef(s string) bool {
	return len(s) > 2 && s[0] == '$' && s[len(s)-1] == '$'
}

func refKey(s string) string {
	if isRef(s) {
		return s[1 : len(s)-1]
	}
	return s
}

type builder struct {
	cfg     *conf.Config
	data    raw2l1.Data
	log     logrus.FieldLogger
	now     time.Time
	dims    map[string]Dim
	overlap []float64
}

// Build creates the file described by cfg from data. A value expression
// that references a key absent from data is an ErrMissingKey error.
func Build(cfg *conf.Config, data raw2l1.Data, opts Options) (*File, error) {
	b := &builder{cfg: cfg, data: data, log: opts.Log, now: opts.Now, dims: make(map[string]Dim)}
	if b.log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		b.log = l
	}
	if b.now.IsZero() {
		b.now = time.Now()
	}
	f := new(File)
	for _, a := range cfg.Global {
		attr, err := b.globalAttr(a)
		if err != nil {
			return nil, err
		}
		f.Attrs = append(f.Attrs, attr)
	}
	for _, s := range cfg.Dimensions() {
		d, err := b.dimension(s)
		if err != nil {
			return nil, err
		}
		b.dims[d.Name] = d
		f.Dims = append(f.Dims, d)
	}
	for _, s := range cfg.Variables() {
		v, times, err := b.variable(s)
		if err != nil {
			return nil, err
		}
		if times != nil && f.Times == nil {
			f.Times = times
		}
		f.Vars = append(f.Vars, v)
	}
	b.log.WithFields(logrus.Fields{"dimensions": len(f.Dims), "variables": len(f.Vars)}).Debug("built netCDF file model")
	return f, nil
}

func (b *builder) globalAttr(a conf.Attr) (Attr, error) {
	v := strings.TrimSpace(a.Value)
	switch {
	case v == HistoryRef:
		return Attr{Name: a.Name, Value: History(b.now)}, nil
	case isRef(v):
		d, err := b.data.Get(refKey(v))
		if err != nil {
			return Attr{}, err
		}
		val, err := dataAttr(d)
		if err != nil {
			return Attr{}, raw2l1.Errorf(raw2l1.ErrValueConvert, "global attribute %s: %v", a.Name, err)
		}
		return Attr{Name: a.Name, Value: val}, nil
	}
	return Attr{Name: a.Name, Value: a.Value}, nil
}

// dataAttr converts a data value into an attribute value.
func dataAttr(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	case []string:
		return strings.Join(t, ", "), nil
	case int, int32, int64, []int, []int32:
		f, err := flatten(v)
		if err != nil {
			return nil, err
		}
		out, _ := typed(f.nums, conf.Int32, fillValues[conf.Int32])
		return out, nil
	}
	f, err := flatten(v)
	if err != nil || f.nums == nil || len(f.shape) > 1 {
		return nil, fmt.Errorf("values of type %T cannot be stored in an attribute", v)
	}
	return append([]float64(nil), f.nums...), nil
}

func (b *builder) dimension(s *conf.Section) (Dim, error) {
	d := Dim{Name: s.Name, Unlimited: s.Type == conf.Time}
	n, err := b.dimLen(s)
	if err != nil {
		return d, err
	}
	if n <= 0 {
		if d.Unlimited {
			return d, raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "dimension %s has no element", s.Name)
		}
		return d, raw2l1.Errorf(raw2l1.ErrConfigSection, "dimension %s has size %d", s.Name, n)
	}
	d.Len = n
	return d, nil
}

// dimLen returns the size of a dimension: the size option, as a literal
// or a data key, or the length of the data entry named like the
// dimension.
func (b *builder) dimLen(s *conf.Section) (int, error) {
	key := s.Name
	if s.Size != "" {
		if n, err := strconv.Atoi(s.Size); err == nil {
			return n, nil
		}
		key = refKey(s.Size)
	}
	v, err := b.data.Get(key)
	if err != nil {
		return 0, err
	}
	if shape := raw2l1.Shape(v); len(shape) > 0 {
		return shape[0], nil
	}
	f, err := flatten(v)
	if err != nil || f.nums == nil {
		return 0, raw2l1.Errorf(raw2l1.ErrValueConvert, "size of dimension %s: key %q holds %T", s.Name, key, v)
	}
	return int(f.nums[0]), nil
}

// value resolves the value expression of a variable: the overlap
// function, a $key$ reference, a bare data key or a numeric literal.
func (b *builder) value(s *conf.Section) (interface{}, error) {
	e := s.Value
	switch {
	case e == OverlapRef:
		return b.overlapValues()
	case isRef(e):
		return b.data.Get(refKey(e))
	}
	if v, ok := b.data[e]; ok {
		return v, nil
	}
	if x, err := parseNumber(e); err == nil {
		return x, nil
	}
	return b.data.Get(e)
}

func (b *builder) overlapValues() (interface{}, error) {
	if b.overlap != nil {
		return b.overlap, nil
	}
	if b.cfg.OverlapFile == "" {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigMissing, "a variable uses %s but option overlap_file is not set", OverlapRef)
	}
	o, err := ReadOverlap(b.cfg.OverlapFile)
	if err != nil {
		return nil, err
	}
	r, err := b.data.Get(raw2l1.RangeDim)
	if err != nil {
		return nil, err
	}
	f, err := flatten(r)
	if err != nil || f.nums == nil {
		return nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "range holds %T, want numbers", r)
	}
	b.overlap = o.Interpolate(f.nums)
	return b.overlap, nil
}

func (b *builder) variable(s *conf.Section) (*Var, []time.Time, error) {
	shape := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		shape[i] = b.dims[d].Len
	}
	v := &Var{Name: s.Name, Type: storage(s.Type), Dims: s.Dims, Shape: shape}
	for _, a := range s.Attrs {
		v.Attrs = append(v.Attrs, varAttr(s.Name, s.Type, a, b.log))
	}
	raw, err := b.value(s)
	if err != nil {
		return nil, nil, err
	}
	f, err := flatten(raw)
	if err != nil {
		return nil, nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: %v", s.Name, err)
	}
	if f.shape != nil && !reflect.DeepEqual(f.shape, shape) {
		return nil, nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: value has shape %v, dimensions %v have %v",
			s.Name, f.shape, s.Dims, shape)
	}
	n := product(shape)
	fill := fillValue(v.Attrs, s.Type)

	if s.Type == conf.Time {
		vals, err := b.encodeTimes(v, f, n, fill)
		if err != nil {
			return nil, nil, err
		}
		v.Values = vals
		var times []time.Time
		if len(s.Dims) == 1 && b.dims[s.Dims[0]].Unlimited && len(f.times) == n {
			times = f.times
		}
		return v, times, nil
	}

	vals, bad, err := convert(f, s.Type, n, fill)
	if err != nil {
		return nil, nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: %v", s.Name, err)
	}
	if bad > 0 {
		b.log.Warn(raw2l1.ErrValueConvert.Msg("variable %s: %d values do not fit in %s and were set to %g",
			s.Name, bad, s.Type, fill))
	}
	v.Values = vals
	return v, nil, nil
}

// encodeTimes converts time stamps to numbers using the units and calendar
// attributes of v. Zero time stamps are written as fill.
func (b *builder) encodeTimes(v *Var, f flat, n int, fill float64) ([]float64, error) {
	f = broadcastIf(f, n)
	if f.nums != nil && len(f.nums) == n {
		return append([]float64(nil), f.nums...), nil
	}
	if f.times == nil {
		return nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: time variables need time stamps", v.Name)
	}
	units := DefaultTimeUnits
	if u, ok := v.Attr("units"); ok {
		units, _ = u.(string)
	} else {
		v.Attrs = append(v.Attrs, Attr{Name: "units", Value: units})
	}
	tu, err := ParseTimeUnits(units)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "variable %s: %v", v.Name, err)
	}
	var cal string
	if c, ok := v.Attr("calendar"); ok {
		cal, _ = c.(string)
	}
	c, err := ParseCalendar(cal)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "variable %s: %v", v.Name, err)
	}
	if len(f.times) != n {
		return nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: have %d time stamps, want %d", v.Name, len(f.times), n)
	}
	out := make([]float64, n)
	for i, t := range f.times {
		if t.IsZero() {
			out[i] = fill
			continue
		}
		if out[i], err = tu.Encode(t, c); err != nil {
			return nil, raw2l1.Errorf(raw2l1.ErrValueConvert, "variable %s: %v", v.Name, err)
		}
	}
	return out, nil
}

func broadcastIf(f flat, n int) flat {
	if f.len() == 1 && n != 1 {
		return broadcast(f, n)
	}
	return f
}
