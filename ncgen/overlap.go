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
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"sort"
	"strconv"
	"strings"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"gonum.org/v1/gonum/floats"
)

// OverlapRef is the value expression of a variable filled with the
// overlap function read from the overlap_file option.
const OverlapRef = "$OVERLAP$"

// Overlap is an overlap function sampled at increasing ranges.
type Overlap struct {
	Range []float64
	Value []float64
}

// ReadOverlap reads an overlap function from path. The file is either a
// netCDF file with "range" and "overlap" variables or a text file of
// (range, overlap) pairs, one per line. Lines that do not start with two
// numbers are ignored.
func ReadOverlap(path string) (*Overlap, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrAncillaryInput, "reading overlap file: %v", err)
	}
	var o *Overlap
	if bytes.HasPrefix(b, []byte("CDF")) || bytes.HasPrefix(b, []byte("\x89HDF")) {
		o, err = readOverlapNC(path)
	} else {
		o, err = readOverlapText(b)
	}
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrAncillaryInput, "overlap file %s: %v", path, err)
	}
	if len(o.Range) < 2 {
		return nil, raw2l1.Errorf(raw2l1.ErrAncillaryInput, "overlap file %s: need at least 2 points, have %d",
			path, len(o.Range))
	}
	sort.Sort(o)
	for i := 1; i < len(o.Range); i++ {
		if o.Range[i] == o.Range[i-1] {
			return nil, raw2l1.Errorf(raw2l1.ErrAncillaryInput, "overlap file %s: range %g appears twice",
				path, o.Range[i])
		}
	}
	return o, nil
}

func (o *Overlap) Len() int           { return len(o.Range) }
func (o *Overlap) Less(i, j int) bool { return o.Range[i] < o.Range[j] }
func (o *Overlap) Swap(i, j int) {
	o.Range[i], o.Range[j] = o.Range[j], o.Range[i]
	o.Value[i], o.Value[j] = o.Value[j], o.Value[i]
}

func readOverlapText(b []byte) (*Overlap, error) {
	o := new(Overlap)
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		f := strings.FieldsFunc(s.Text(), func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if len(f) < 2 {
			continue
		}
		r, err1 := strconv.ParseFloat(f[0], 64)
		v, err2 := strconv.ParseFloat(f[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		o.Range = append(o.Range, r)
		o.Value = append(o.Value, v)
	}
	return o, s.Err()
}

func readOverlapNC(path string) (*Overlap, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	o := new(Overlap)
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{"range", &o.Range},
		{"overlap", &o.Value},
	} {
		vr, err := g.GetVariable(v.name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %v", v.name, err)
		}
		f, err := flatten(vr.Values)
		if err != nil || f.nums == nil {
			return nil, fmt.Errorf("variable %s holds %T, want a numeric vector", v.name, vr.Values)
		}
		*v.dst = f.nums
	}
	if len(o.Range) != len(o.Value) {
		return nil, fmt.Errorf("%d ranges but %d overlap values", len(o.Range), len(o.Value))
	}
	return o, nil
}

// Interpolate returns the overlap function linearly interpolated at each
// range of r. Ranges outside the sampled interval get the value of the
// nearest end point.
func (o *Overlap) Interpolate(r []float64) []float64 {
	lo, hi := floats.Min(o.Range), floats.Max(o.Range)
	out := make([]float64, len(r))
	for i, x := range r {
		switch {
		case x <= lo:
			out[i] = o.Value[0]
		case x >= hi:
			out[i] = o.Value[len(o.Value)-1]
		default:
			j := floats.Within(o.Range, x)
			w := (x - o.Range[j]) / (o.Range[j+1] - o.Range[j])
			out[i] = o.Value[j] + w*(o.Value[j+1]-o.Value[j])
		}
	}
	return out
}
