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
	"os"
	"reflect"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/sirupsen/logrus"
)

// WalkText frames every file in files with f and calls fn for each message,
// in file order. Files that cannot be opened are logged and skipped. It
// returns ErrNoInput if no file could be read. The message type fixed by f
// carries over from one file to the next.
func WalkText(files []string, f *Framer, log logrus.FieldLogger, fn func(file string, m *Message) error) error {
	read := 0
	for _, file := range files {
		ok, err := walkFile(file, f, log, fn)
		if err != nil {
			return err
		}
		if ok {
			read++
		}
	}
	if read == 0 {
		return raw2l1.Errorf(raw2l1.ErrNoInput, "none of the %d input files could be read", len(files))
	}
	return nil
}

func walkFile(file string, f *Framer, log logrus.FieldLogger, fn func(string, *Message) error) (bool, error) {
	r, err := os.Open(file)
	if err != nil {
		log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: %v", file, err))
		return false, nil
	}
	defer r.Close()
	err = f.Messages(r, func(m *Message) error { return fn(file, m) })
	if err != nil {
		if raw2l1.CodeOf(err) != 0 {
			return true, err
		}
		log.Warn(raw2l1.ErrFileSkipped.Msg("reading %s: %v", file, err))
	}
	return true, nil
}

// ScanText counts the messages of a text file set. Each start line counts
// as one time step, including messages that will fail to decode. The other
// dimensions are returned by dimsOf for the first decodable message and
// must not change afterwards. Messages for which dimsOf fails are not used
// for sizing.
func ScanText(files []string, f *Framer, dimsOf func(*Message) (raw2l1.Dims, error),
	log logrus.FieldLogger) (raw2l1.Dims, error) {
	f.Reset()
	defer f.Reset()
	var (
		n    int
		dims raw2l1.Dims
		from string
	)
	err := WalkText(files, f, log, func(file string, m *Message) error {
		n++
		if m.Err != nil {
			return nil
		}
		d, err := dimsOf(m)
		if err != nil {
			return nil
		}
		if dims == nil {
			dims, from = d, fmt.Sprintf("%s:%d", file, m.Line)
			return nil
		}
		if !reflect.DeepEqual(d, dims) {
			return raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s:%d: dimensions %v differ from %v found at %s",
				file, m.Line, d, dims, from)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "no message found in %d input files", len(files))
	}
	if dims == nil {
		return nil, raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "none of the %d messages could be decoded", n)
	}
	out := raw2l1.Dims{raw2l1.TimeDim: n}
	for k, v := range dims {
		out[k] = v
	}
	return out, nil
}

// ScanContainers sums the length of the timeDim dimension over a set of
// netCDF files. The sizes of the fixed dimensions are read from the first
// readable file only and are trusted for the remaining files. It returns
// the files that could be opened, in order.
func ScanContainers(files []string, timeDim string, fixed []string,
	log logrus.FieldLogger) (raw2l1.Dims, []string, error) {
	var (
		dims = raw2l1.Dims{timeDim: 0}
		ok   []string
	)
	for _, file := range files {
		g, err := netcdf.Open(file)
		if err != nil {
			log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: %v", file, err))
			continue
		}
		nt, found := timeLen(g, timeDim)
		if !found {
			g.Close()
			log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: no %q dimension", file, timeDim))
			continue
		}
		if len(ok) == 0 {
			for _, name := range fixed {
				n, found := g.GetDimension(name)
				if !found {
					g.Close()
					return nil, nil, raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s: no %q dimension", file, name)
				}
				dims[name] = int(n)
			}
		}
		g.Close()
		dims[timeDim] += nt
		ok = append(ok, file)
	}
	if len(ok) == 0 {
		return nil, nil, raw2l1.Errorf(raw2l1.ErrNoInput, "none of the %d input files could be read", len(files))
	}
	if dims[timeDim] == 0 {
		return nil, nil, raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "%d input files hold no time step", len(ok))
	}
	return dims, ok, nil
}

// timeLen returns the number of records of the time dimension. The
// unlimited dimension of a classic file reports length zero, so the
// coordinate variable is used when present.
func timeLen(g api.Group, timeDim string) (int, bool) {
	if vg, err := g.GetVarGetter(timeDim); err == nil {
		if shape := vg.Shape(); len(shape) > 0 {
			return int(shape[0]), true
		}
	}
	n, ok := g.GetDimension(timeDim)
	return int(n), ok
}
