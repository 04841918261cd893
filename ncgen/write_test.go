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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "ncgen")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestWriteClassic(t *testing.T) {
	f := testFile(t)
	path := filepath.Join(tempDir(t), "out.nc")
	if err := Write(f, path, WriteOptions{Format: conf.Classic}); err != nil {
		t.Fatal(err)
	}
	g, err := netcdf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	tv, err := g.GetVariable("time")
	if err != nil {
		t.Fatal(err)
	}
	if have := tv.Values.([]float64); !floats.Equal(have, []float64{-60, 60, 120}) {
		t.Errorf("time: have %v", have)
	}
	rcs, err := g.GetVariable("rcs_0")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]float32{{1, 2}, {3, 4}, {5, 6}}
	if !reflect.DeepEqual(rcs.Values, want) {
		t.Errorf("rcs_0: have %v, want %v", rcs.Values, want)
	}
	if !reflect.DeepEqual(rcs.Dimensions, []string{"time", "range"}) {
		t.Errorf("rcs_0 dimensions: have %v", rcs.Dimensions)
	}
	cbh, err := g.GetVariable("cbh")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cbh.Values, [][]int16{{100, -9}, {200, 300}, {-9, -9}}) {
		t.Errorf("cbh: have %v", cbh.Values)
	}
	if _, err := g.GetVariable("station"); err == nil {
		t.Error("string variables cannot be written in the classic format")
	}
}

func TestWriteNetCDF4(t *testing.T) {
	f := testFile(t)
	path := filepath.Join(tempDir(t), "out.nc")
	var buf bytes.Buffer
	log := logrus.New()
	log.Out = &buf
	err := Write(f, path, WriteOptions{Format: conf.NetCDF4, Compression: true, CompressionLevel: 4, Log: log})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "E540") {
		t.Errorf("compression request not reported:\n%s", buf.String())
	}
	g, err := netcdf.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	rcs, err := g.GetVariable("rcs_0")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rcs.Values, [][]float32{{1, 2}, {3, 4}, {5, 6}}) {
		t.Errorf("rcs_0: have %v", rcs.Values)
	}
	st, err := g.GetVariable("station")
	if err != nil {
		t.Fatal(err)
	}
	if st.Values != "SIRTA" {
		t.Errorf("station: have %#v", st.Values)
	}
	vg, err := g.GetVarGetter("time")
	if err != nil {
		t.Fatal(err)
	}
	if vg.Len() != 3 {
		t.Errorf("time has %d records, want 3", vg.Len())
	}
}

// Output must only depend on the input data and the creation time.
func TestWriteIdempotent(t *testing.T) {
	dir := tempDir(t)
	var files [][]byte
	for _, name := range []string{"a.nc", "b.nc"} {
		path := filepath.Join(dir, name)
		if err := Write(testFile(t), path, WriteOptions{Format: conf.Classic}); err != nil {
			t.Fatal(err)
		}
		b, err := ioutil.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, b)
	}
	if !bytes.Equal(files[0], files[1]) {
		t.Error("files written from the same data differ")
	}
}

func TestWriteFailureLeavesNoFile(t *testing.T) {
	dir := tempDir(t)
	f := testFile(t)
	f.Vars = append(f.Vars, &Var{
		Name:   "broken",
		Type:   conf.Float64,
		Dims:   []string{"undeclared"},
		Shape:  []int{2},
		Values: []float64{1, 2},
	})
	path := filepath.Join(dir, "out.nc")
	err := Write(f, path, WriteOptions{Format: conf.Classic})
	if raw2l1.CodeOf(err) != raw2l1.ErrWrite {
		t.Fatalf("have %v, want an E520 error", err)
	}
	left, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("%d files left in the output directory", len(left))
	}

	err = Write(testFile(t), filepath.Join(dir, "missing", "out.nc"), WriteOptions{Format: conf.Classic})
	if raw2l1.CodeOf(err) != raw2l1.ErrWrite {
		t.Errorf("writing into a missing directory: have %v", err)
	}
}

func TestNest(t *testing.T) {
	for _, test := range []struct {
		values interface{}
		shape  []int
		want   interface{}
	}{
		{values: []float64{7}, shape: []int{}, want: 7.0},
		{values: []int16{1, 2, 3}, shape: []int{3}, want: []int16{1, 2, 3}},
		{values: []int32{1, 2, 3, 4, 5, 6}, shape: []int{2, 3}, want: [][]int32{{1, 2, 3}, {4, 5, 6}}},
		{values: []int8{1, 2, 3, 4}, shape: []int{2, 1, 2}, want: [][][]int8{{{1, 2}}, {{3, 4}}}},
	} {
		if have := nest(test.values, test.shape); !reflect.DeepEqual(have, test.want) {
			t.Errorf("nest(%v, %v): have %#v, want %#v", test.values, test.shape, have, test.want)
		}
	}
}
