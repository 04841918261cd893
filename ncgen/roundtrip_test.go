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
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/sirupsen/logrus"
)

// scanFile builds a file from a text log whose last variable holds three
// int8 or int16 values per record, so that records end on padding.
func scanFile(t *testing.T, typ conf.Type) (*File, int) {
	var log strings.Builder
	start := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&log, "-%s\nA\n%d %d %d\n", start.Add(time.Duration(i)*time.Minute).Format("2006-01-02 15:04:05"),
			i, -i, 2*i)
	}
	path := filepath.Join(tempDir(t), "log.txt")
	if err := ioutil.WriteFile(path, []byte(log.String()), 0644); err != nil {
		t.Fatal(err)
	}
	parseTime, err := codec.TimeParser("-%Y-%m-%d %H:%M:%S")
	if err != nil {
		t.Fatal(err)
	}
	fr := &codec.Framer{
		Start:     regexp.MustCompile(`^-\d{4}-`),
		ParseTime: parseTime,
		TypeLine:  1,
		Type:      func(h string) (string, bool) { return h, h == "A" },
		Lines:     map[string]int{"A": 3},
	}
	l := logrus.New()
	l.Out = ioutil.Discard
	dims, err := codec.ScanText([]string{path}, fr, func(m *codec.Message) (raw2l1.Dims, error) {
		return raw2l1.Dims{"level": len(strings.Fields(m.Lines[2]))}, nil
	}, l)
	if err != nil {
		t.Fatal(err)
	}
	nt, nl := dims[raw2l1.TimeDim], dims["level"]

	secs := make([]float64, 0, nt)
	var flags []float64
	err = codec.WalkText([]string{path}, fr, l, func(_ string, m *codec.Message) error {
		secs = append(secs, m.Time.Sub(start).Seconds())
		for _, s := range strings.Fields(m.Lines[2]) {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			flags = append(flags, x)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	values, _ := typed(flags, typ, -9)
	f := &File{
		Dims: []Dim{{Name: raw2l1.TimeDim, Len: nt, Unlimited: true}, {Name: "level", Len: nl}},
		Vars: []*Var{
			{Name: "time", Type: conf.Float64, Dims: []string{raw2l1.TimeDim}, Shape: []int{nt}, Values: secs},
			{Name: "flag", Type: typ, Dims: []string{raw2l1.TimeDim, "level"}, Shape: []int{nt, nl}, Values: values},
		},
	}
	return f, nt
}

// Every scanned time step must come back as a record, whatever the format
// and the size of the last record variable.
func TestWriteRecordCount(t *testing.T) {
	for _, format := range []conf.Format{conf.Classic, conf.Offset64, conf.NetCDF4} {
		for _, typ := range []conf.Type{conf.Int8, conf.Int16} {
			t.Run(fmt.Sprintf("%s/%s", format, typ), func(t *testing.T) {
				f, nt := scanFile(t, typ)
				path := filepath.Join(tempDir(t), "out.nc")
				if err := Write(f, path, WriteOptions{Format: format}); err != nil {
					t.Fatal(err)
				}
				g, err := netcdf.Open(path)
				if err != nil {
					t.Fatal(err)
				}
				defer g.Close()
				vg, err := g.GetVarGetter("time")
				if err != nil {
					t.Fatal(err)
				}
				if have := vg.Len(); have != int64(nt) {
					t.Errorf("time has %d records, want %d", have, nt)
				}
				fg, err := g.GetVarGetter("flag")
				if err != nil {
					t.Fatal(err)
				}
				if shape := fg.Shape(); len(shape) != 2 || shape[0] != int64(nt) || shape[1] != 3 {
					t.Errorf("flag shape: have %v, want [%d 3]", shape, nt)
				}
			})
		}
	}
}
