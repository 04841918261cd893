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

package lufft

import (
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/ncgen"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// chm describes a CHM15k test file.
type chm struct {
	version  string
	start    time.Time
	nt, nr   int
	temp     int16
	errorExt interface{}
	pbl      bool
}

var epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

type ncVar struct {
	name   string
	dims   []string
	values interface{}
}

func writeCHM(t *testing.T, path string, c chm) {
	t.Helper()
	const nl = 3
	var (
		secs  = make([]float64, c.nt)
		rng   = make([]float32, c.nr)
		beta  = make([]float32, c.nt*c.nr)
		cbh   = make([]int32, c.nt*nl)
		pbl   = make([]int16, c.nt*nl)
		temp  = make([]int16, c.nt)
		avg   = make([]int32, c.nt)
		vor   = make([]int16, c.nt)
		sci   = make([]int16, c.nt)
		base  = make([]float32, c.nt)
		sd    = make([]float32, c.nt)
		shots = make([]int32, c.nt)
		optic = make([]int16, c.nt)
	)
	for i := 0; i < c.nt; i++ {
		secs[i] = c.start.Sub(epoch).Seconds() + 15*float64(i)
		for j := 0; j < c.nr; j++ {
			beta[i*c.nr+j] = float32(100*i + j)
		}
		cbh[i*nl], cbh[i*nl+1], cbh[i*nl+2] = 1000+int32(i), -1, -1
		pbl[i*nl] = 450
		temp[i] = c.temp
		avg[i] = 15000
		vor[i], sci[i] = 2000, 0
		base[i], sd[i] = 0.5, 0.01
		shots[i] = 105000
		optic[i] = 97
	}
	for j := range rng {
		rng[j] = float32(15 * (j + 1))
	}
	vars := []ncVar{
		{"time", []string{"time"}, secs},
		{"range", []string{"range"}, rng},
		{"beta_raw", []string{"time", "range"}, beta},
		{"cbh", []string{"time", "layer"}, cbh},
		{"temp_int", []string{"time"}, temp},
		{"temp_ext", []string{"time"}, temp},
		{"temp_det", []string{"time"}, temp},
		{"average_time", []string{"time"}, avg},
		{"vor", []string{"time"}, vor},
		{"sci", []string{"time"}, sci},
		{"base", []string{"time"}, base},
		{"stddev", []string{"time"}, sd},
		{"laser_pulses", []string{"time"}, shots},
		{"state_optics", []string{"time"}, optic},
		{"error_ext", []string{"time"}, c.errorExt},
	}
	if c.pbl {
		vars = append(vars, ncVar{"pbl", []string{"time", "layer"}, pbl})
	}

	h := cdf.NewHeader([]string{"time", "range", "layer"}, []int{0, c.nr, nl})
	h.AddAttribute("", "software_version", c.version)
	h.AddAttribute("", "serlom", "TUB120011 ")
	for _, v := range vars {
		h.AddVariable(v.name, v.dims, v.values)
	}
	h.AddAttribute("time", "units", "seconds since 1904-01-01 00:00:00.000 00:00")
	h.AddAttribute("cbh", "_FillValue", []int32{-1})
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cf, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		if _, err := cf.Writer(v.name, nil, nil).Write(v.values); err != nil && err != io.EOF {
			t.Fatalf("%s: %v", v.name, err)
		}
	}
	if err := ncgen.FinishRecords(f, h); err != nil {
		t.Fatal(err)
	}
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "lufft")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func run(t *testing.T, files []string) (raw2l1.Dims, raw2l1.Data, string) {
	t.Helper()
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf
	log.Formatter = &logrus.TextFormatter{DisableColors: true, DisableTimestamp: true}
	cfg, err := raw2l1.NewReaderConfig(time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), nil, nil, log)
	if err != nil {
		t.Fatal(err)
	}
	r, err := raw2l1.LoadReader(Name)
	if err != nil {
		t.Fatal(err)
	}
	dims, err := r.ScanDimensions(files, cfg)
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.Decode(files, dims, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return dims, d, buf.String()
}

var day = time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)

func TestDecode(t *testing.T) {
	dir := tempDir(t)
	files := []string{filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc")}
	writeCHM(t, files[0], chm{version: "0.743", start: day, nt: 2, nr: 4, temp: 2950,
		errorExt: []float64{0, float64(1<<33 | 1<<12)}, pbl: true})
	writeCHM(t, files[1], chm{version: "0.743", start: day.Add(time.Hour), nt: 3, nr: 4, temp: 2950,
		errorExt: []float64{1 << 12, 0, 0}, pbl: true})

	dims, d, logs := run(t, files)
	if want := (raw2l1.Dims{"time": 5, "range": 4, "layer": 3}); !reflect.DeepEqual(dims, want) {
		t.Fatalf("dimensions: have %v, want %v", dims, want)
	}
	wantTimes := []time.Time{day, day.Add(15 * time.Second), day.Add(time.Hour),
		day.Add(time.Hour + 15*time.Second), day.Add(time.Hour + 30*time.Second)}
	if have := d["time"].([]time.Time); !reflect.DeepEqual(have, wantTimes) {
		t.Errorf("time: %v", pretty.Diff(have, wantTimes))
	}
	if have := d["range"].([]float64); !floats.Equal(have, []float64{15, 30, 45, 60}) {
		t.Errorf("range: have %v", have)
	}
	rcs := d["rcs_0"].(*sparse.DenseArray)
	if have := raw2l1.Row(rcs, 3); !floats.Equal(have, []float64{100, 101, 102, 103}) {
		t.Errorf("rcs_0[3]: have %v", have)
	}
	cbh := d["cbh"].(*sparse.DenseArray)
	if have := raw2l1.Row(cbh, 1); !floats.Equal(have, []float64{1001, -999, -999}) {
		t.Errorf("cbh[1]: have %v", have)
	}
	if have := raw2l1.Row(d["pbl"].(*sparse.DenseArray), 4); have[0] != 450 {
		t.Errorf("pbl[4]: have %v", have)
	}
	if have := d["temp_int"].([]float64); !floats.EqualApprox(have, []float64{295, 295, 295, 295, 295}, 1e-9) {
		t.Errorf("temp_int: have %v", have)
	}
	if have := d["temp_lom"].([]float64); floats.Max(have) != -999 {
		t.Errorf("temp_lom is not in the files: have %v", have)
	}
	if have := d["average_time"].([]float64); !floats.EqualApprox(have, []float64{15, 15, 15, 15, 15}, 1e-12) {
		t.Errorf("average_time: have %v", have)
	}
	if have := d["error_ext"].([]int); !reflect.DeepEqual(have, []int{0, 1<<33 | 1<<12, 1 << 12, 0, 0}) {
		t.Errorf("error_ext: have %v", have)
	}
	if d["instrument_id"] != "TUB120011" || d["software_version"] != "0.743" || d["firmware"] != latest {
		t.Errorf("metadata: have %v %v %v", d["instrument_id"], d["software_version"], d["firmware"])
	}
	for _, want := range []string{
		"E450: Window contaminated: 2 of 5 records",
		"E450: Tilt angle out of range: 1 of 5 records",
		"E410: variable temp_lom",
	} {
		if !strings.Contains(logs, want) {
			t.Errorf("log does not contain %q:\n%s", want, logs)
		}
	}
}

func TestFirmwareBranches(t *testing.T) {
	for _, test := range []struct {
		version  string
		temp     float64
		errorExt interface{}
		status   int
		pbl      float64
	}{
		{version: "0.559", temp: 2950*0.1 + 273.15, errorExt: []int32{-1}, status: 1<<32 - 1, pbl: -999},
		{version: "0.560", temp: 295, errorExt: []int32{-1}, status: 1<<32 - 1, pbl: -999},
		{version: "0.7", temp: 295, errorExt: []float64{1<<33 | 1}, status: 1, pbl: -999},
		{version: "0.743", temp: 295, errorExt: []float64{1<<33 | 1}, status: 1<<33 | 1, pbl: 450},
		{version: "0.744", temp: 295, errorExt: []float64{1<<33 | 1}, status: 1<<33 | 1, pbl: 450},
	} {
		t.Run(test.version, func(t *testing.T) {
			path := filepath.Join(tempDir(t), "chm.nc")
			writeCHM(t, path, chm{version: test.version, start: day, nt: 1, nr: 2, temp: 2950,
				errorExt: test.errorExt, pbl: true})
			_, d, _ := run(t, []string{path})
			if have := d["temp_ext"].([]float64)[0]; !floats.EqualWithinAbs(have, test.temp, 1e-9) {
				t.Errorf("temp_ext: have %g, want %g", have, test.temp)
			}
			if have := d["error_ext"].([]int)[0]; have != test.status {
				t.Errorf("error_ext: have %#x, want %#x", have, test.status)
			}
			if have := raw2l1.Row(d["pbl"].(*sparse.DenseArray), 0)[0]; have != test.pbl {
				t.Errorf("pbl: have %g, want %g", have, test.pbl)
			}
		})
	}
}

func TestFirmwareTable(t *testing.T) {
	for _, test := range []struct {
		v     float64
		want  string
		known bool
	}{
		{0.5, legacy, true},
		{0.559, legacy, true},
		{0.56, v07, true},
		{0.7, v07, true},
		{0.71, latest, true},
		{1.1, latest, true},
		{1.2, latest, false},
	} {
		if have, known := Firmware.Lookup(test.v); have != test.want || known != test.known {
			t.Errorf("%g: have %s %v, want %s %v", test.v, have, known, test.want, test.known)
		}
	}
}

// The range size of the first file is trusted for the whole set. A later
// file with another size keeps its time steps but loses its profiles.
func TestRangeTrust(t *testing.T) {
	dir := tempDir(t)
	files := []string{filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc")}
	writeCHM(t, files[0], chm{version: "0.743", start: day, nt: 1, nr: 4, temp: 2950, errorExt: []float64{0}})
	writeCHM(t, files[1], chm{version: "0.743", start: day.Add(time.Hour), nt: 1, nr: 6, temp: 2950, errorExt: []float64{0}})
	dims, d, logs := run(t, files)
	if dims[raw2l1.RangeDim] != 4 || dims[raw2l1.TimeDim] != 2 {
		t.Fatalf("dimensions: have %v", dims)
	}
	rcs := d["rcs_0"].(*sparse.DenseArray)
	if have := raw2l1.Row(rcs, 1); floats.Max(have) != -999 {
		t.Errorf("rcs_0[1]: have %v", have)
	}
	if have := d["time"].([]time.Time)[1]; !have.Equal(day.Add(time.Hour)) {
		t.Errorf("time[1]: have %v", have)
	}
	if !strings.Contains(logs, "6 range gates instead of 4") {
		t.Errorf("log:\n%s", logs)
	}
}

func TestSkippedFile(t *testing.T) {
	dir := tempDir(t)
	good := filepath.Join(dir, "good.nc")
	writeCHM(t, good, chm{version: "0.743", start: day, nt: 2, nr: 2, temp: 2950, errorExt: []float64{0, 0}})
	bad := filepath.Join(dir, "bad.nc")
	if err := ioutil.WriteFile(bad, []byte("not a netCDF file"), 0644); err != nil {
		t.Fatal(err)
	}
	dims, _, logs := run(t, []string{bad, good, filepath.Join(dir, "missing.nc")})
	if dims[raw2l1.TimeDim] != 2 {
		t.Errorf("time: have %d, want 2", dims[raw2l1.TimeDim])
	}
	if n := strings.Count(logs, "E310"); n != 4 {
		t.Errorf("want 2 files skipped in each pass, have %d E310 messages:\n%s", n, logs)
	}
}

func TestUnits(t *testing.T) {
	if err := Units.CheckAll(conversions()); err != nil {
		t.Fatal(err)
	}
	bad := conversions()
	bad["temp_det"] = append(bad["temp_det"], bad["average_time"]...)
	if err := Units.CheckAll(bad); raw2l1.CodeOf(err) != raw2l1.ErrUnitMismatch {
		t.Errorf("have %v, want E470", err)
	}
}
