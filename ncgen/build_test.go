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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

const testConf = `
[conf]
reader = test

[global]
title = test file
history = $HISTORY$
instrument_id = $instrument_id$
n_gates = $n_gates$

[time]
dim = time
type = time
value = time
units = seconds since 2018-01-02 00:00:00

[range]
dim = range
type = float32
value = range
units = m

[layer]
dim = layer
size = 2

[rcs_0]
dim = time, range
type = float32
value = rcs_0
_FillValue = -999

[cbh]
dim = time, layer
type = int16
value = $cbh$
_FillValue = -9
flag_values = 0, 1, 2

[status]
dim = time
type = int8
value = status
missing_value = not a number

[wavelength]
dim =
type = float64
value = 905
units = nm

[station]
dim =
type = string
value = station
`

func testData() raw2l1.Data {
	t0 := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	rcs := raw2l1.Profiles(-999, 3, 2)
	copy(rcs.Elements, []float64{1, 2, 3, 4, 5, 6})
	cbh := raw2l1.IntProfiles(-9, 3, 2)
	copy(cbh.Elements, []int{100, -9, 200, 300, -9, -9})
	return raw2l1.Data{
		"time":          []time.Time{t0.Add(-time.Minute), t0.Add(time.Minute), t0.Add(2 * time.Minute)},
		"range":         []float64{10, 20},
		"rcs_0":         rcs,
		"cbh":           cbh,
		"status":        []int{0, 1, 500},
		"instrument_id": "CL31-A",
		"n_gates":       2,
		"station":       "SIRTA",
	}
}

func testFile(t *testing.T) *File {
	c, err := conf.Parse([]byte(testConf))
	if err != nil {
		t.Fatal(err)
	}
	f, err := Build(c, testData(), Options{Now: time.Date(2018, 1, 3, 4, 5, 6, 0, time.UTC)})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestBuild(t *testing.T) {
	f := testFile(t)

	wantAttrs := []Attr{
		{"title", "test file"},
		{"history", "2018-01-03 04:05:06 UTC: file created with raw2l1 " + raw2l1.Version},
		{"instrument_id", "CL31-A"},
		{"n_gates", []int32{2}},
	}
	if !reflect.DeepEqual(f.Attrs, wantAttrs) {
		t.Errorf("global attributes: %v", pretty.Diff(f.Attrs, wantAttrs))
	}
	wantDims := []Dim{{"time", 3, true}, {"range", 2, false}, {"layer", 2, false}}
	if !reflect.DeepEqual(f.Dims, wantDims) {
		t.Errorf("dimensions: %v", pretty.Diff(f.Dims, wantDims))
	}

	tv := f.Var("time")
	if !floats.Equal(tv.Values.([]float64), []float64{-60, 60, 120}) {
		t.Errorf("time: have %v", tv.Values)
	}
	if tv.Type != conf.Float64 {
		t.Errorf("time is stored as %s", tv.Type)
	}
	if len(f.Times) != 3 {
		t.Errorf("have %d time stamps", len(f.Times))
	}

	for _, test := range []struct {
		name  string
		shape []int
		want  interface{}
	}{
		{name: "range", shape: []int{2}, want: []float32{10, 20}},
		{name: "rcs_0", shape: []int{3, 2}, want: []float32{1, 2, 3, 4, 5, 6}},
		{name: "cbh", shape: []int{3, 2}, want: []int16{100, -9, 200, 300, -9, -9}},
		// 500 does not fit in a byte and gets the default fill value.
		{name: "status", shape: []int{3}, want: []int8{0, 1, -127}},
		{name: "wavelength", shape: []int{}, want: []float64{905}},
		{name: "station", shape: []int{}, want: []string{"SIRTA"}},
	} {
		v := f.Var(test.name)
		if v == nil {
			t.Errorf("%s: missing", test.name)
			continue
		}
		if !reflect.DeepEqual(v.Values, test.want) {
			t.Errorf("%s: have %v, want %v", test.name, v.Values, test.want)
		}
		if !reflect.DeepEqual(v.Shape, test.shape) {
			t.Errorf("%s: shape %v, want %v", test.name, v.Shape, test.shape)
		}
	}

	cbh := f.Var("cbh")
	if a, _ := cbh.Attr("_FillValue"); !reflect.DeepEqual(a, []int16{-9}) {
		t.Errorf("cbh _FillValue: have %#v", a)
	}
	if a, _ := cbh.Attr("flag_values"); !reflect.DeepEqual(a, []int16{0, 1, 2}) {
		t.Errorf("cbh flag_values: have %#v", a)
	}
	if a, _ := f.Var("status").Attr("missing_value"); !reflect.DeepEqual(a, []int8{-127}) {
		t.Errorf("status missing_value: have %#v", a)
	}
	if a, _ := f.Var("rcs_0").Attr("_FillValue"); !reflect.DeepEqual(a, []float32{-999}) {
		t.Errorf("rcs_0 _FillValue: have %#v", a)
	}
}

func TestBuildErrors(t *testing.T) {
	for _, test := range []struct {
		name   string
		conf   string
		modify func(raw2l1.Data)
		want   raw2l1.Code
	}{
		{
			name:   "missing value key",
			conf:   testConf,
			modify: func(d raw2l1.Data) { delete(d, "rcs_0") },
			want:   raw2l1.ErrMissingKey,
		},
		{
			name:   "missing global key",
			conf:   testConf,
			modify: func(d raw2l1.Data) { delete(d, "instrument_id") },
			want:   raw2l1.ErrMissingKey,
		},
		{
			name:   "missing dimension key",
			conf:   testConf,
			modify: func(d raw2l1.Data) { delete(d, "time") },
			want:   raw2l1.ErrMissingKey,
		},
		{
			name:   "shape mismatch",
			conf:   testConf,
			modify: func(d raw2l1.Data) { d["rcs_0"] = raw2l1.Profiles(0, 3, 3) },
			want:   raw2l1.ErrValueConvert,
		},
		{
			name: "overlap without file",
			conf: "[conf]\nreader = test\n[range]\ndim = range\ntype = float\nvalue = range\n" +
				"[overlap]\ndim = range\ntype = float\nvalue = $OVERLAP$\n",
			want: raw2l1.ErrConfigMissing,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			c, err := conf.Parse([]byte(test.conf))
			if err != nil {
				t.Fatal(err)
			}
			d := testData()
			if test.modify != nil {
				test.modify(d)
			}
			_, err = Build(c, d, Options{})
			if code := raw2l1.CodeOf(err); code != test.want {
				t.Errorf("have %v (code %d), want code %d", err, code, test.want)
			}
		})
	}
}

func TestFilterDay(t *testing.T) {
	f := testFile(t)
	if err := f.FilterDay(time.Date(2018, 1, 2, 15, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if d, _ := f.Dim("time"); d.Len != 2 {
		t.Errorf("time dimension: have %d, want 2", d.Len)
	}
	if have := f.Var("time").Values.([]float64); !floats.Equal(have, []float64{60, 120}) {
		t.Errorf("time: have %v", have)
	}
	if have := f.Var("rcs_0").Values; !reflect.DeepEqual(have, []float32{3, 4, 5, 6}) {
		t.Errorf("rcs_0: have %v", have)
	}
	if have := f.Var("status").Shape; !reflect.DeepEqual(have, []int{2}) {
		t.Errorf("status shape: have %v", have)
	}
	if have := f.Var("range").Values; !reflect.DeepEqual(have, []float32{10, 20}) {
		t.Errorf("range must not be filtered: have %v", have)
	}
	if err := f.FilterDay(time.Date(2018, 1, 5, 0, 0, 0, 0, time.UTC)); raw2l1.CodeOf(err) != raw2l1.ErrNoTimeSteps {
		t.Errorf("filtering on a day without data: have %v", err)
	}
}

func TestOverlap(t *testing.T) {
	dir, err := ioutil.TempDir("", "overlap")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "overlap.txt")
	const text = "# range overlap\n" +
		"range, overlap\n" +
		"30, 1.0\n" +
		"0, 0.0\n" +
		"10; 0.5\n"
	if err := ioutil.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := ReadOverlap(path)
	if err != nil {
		t.Fatal(err)
	}
	have := o.Interpolate([]float64{-5, 0, 5, 10, 20, 30, 40})
	want := []float64{0, 0, 0.25, 0.5, 0.75, 1, 1}
	if !floats.EqualApprox(have, want, 1e-12) {
		t.Errorf("have %v, want %v", have, want)
	}

	c, err := conf.Parse([]byte("[conf]\nreader = test\noverlap_file = " + path + "\n" +
		"[range]\ndim = range\ntype = double\nvalue = range\n" +
		"[overlap]\ndim = range\ntype = double\nvalue = $OVERLAP$\n"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := Build(c, raw2l1.Data{"range": []float64{5, 20}}, Options{Log: logrus.New()})
	if err != nil {
		t.Fatal(err)
	}
	if v := f.Var("overlap").Values.([]float64); !floats.EqualApprox(v, []float64{0.25, 0.75}, 1e-12) {
		t.Errorf("overlap variable: have %v", v)
	}

	if _, err := ReadOverlap(filepath.Join(dir, "missing.txt")); raw2l1.CodeOf(err) != raw2l1.ErrAncillaryInput {
		t.Errorf("missing overlap file: have %v", err)
	}
}
