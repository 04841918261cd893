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

// Package rpg decodes the brightness temperature (BRT) binary files of
// RPG HATPRO and HUMPRO microwave radiometers.
//
// The data keys are time, frequency, tb, rain_flag, elevation and
// azimuth. Frequencies are converted to Hz. Files whose header declares
// local time are shifted to UTC by the local_offset reader option, in
// hours.
package rpg

import (
	"fmt"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ctessum/unit"
)

// Name is the name the reader is registered under.
const Name = "rpg_brt"

// ChannelDim is the dimension of the radiometer channels.
const ChannelDim = "channel"

// Units holds the dimensions of the converted data keys.
var Units = codec.UnitTable{"frequency": unit.Herz}

var conversions = map[string][]codec.Conversion{"frequency": {codec.GigahertzToHertz}}

func init() {
	raw2l1.RegisterReader(Name, func() raw2l1.Reader { return Reader{} })
}

// Reader decodes BRT files.
type Reader struct{}

// ScanDimensions sums the records declared in the file headers. Every
// file must have the channel count of the first one.
func (Reader) ScanDimensions(files []string, cfg *raw2l1.ReaderConfig) (raw2l1.Dims, error) {
	var (
		dims  = raw2l1.Dims{raw2l1.TimeDim: 0}
		freq  []float32
		first string
		read  int
	)
	for _, file := range files {
		b, err := openBRT(file)
		if err != nil {
			skip(cfg, file, err)
			continue
		}
		b.Close()
		read++
		if b.complete < int(b.Records) {
			cfg.Log.WithField("file", file).Warn(raw2l1.ErrMalformed.Msg(
				"truncated: %d of %d records", b.complete, b.Records))
		}
		if freq == nil {
			freq, first = b.freq, file
			dims[ChannelDim] = len(freq)
		} else if err := sameChannels(freq, b.freq); err != nil {
			return nil, raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s: %v of %s", file, err, first)
		}
		dims[raw2l1.TimeDim] += b.complete
	}
	if read == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoInput, "none of the %d input files could be read", len(files))
	}
	if dims[raw2l1.TimeDim] == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoTimeSteps, "%d input files hold no record", read)
	}
	return dims, nil
}

func skip(cfg *raw2l1.ReaderConfig, file string, err error) {
	if raw2l1.CodeOf(err) == raw2l1.ErrMessageType {
		cfg.Log.WithField("file", file).Warn(err)
		return
	}
	cfg.Log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: %v", file, err))
}

func sameChannels(a, b []float32) error {
	if len(a) != len(b) {
		return fmt.Errorf("%d channels instead of the %d", len(b), len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("channel %d at %g GHz instead of the %g GHz", i+1, b[i], a[i])
		}
	}
	return nil
}

// Decode reads the records of files in order.
func (Reader) Decode(files []string, dims raw2l1.Dims, cfg *raw2l1.ReaderConfig) (raw2l1.Data, error) {
	if err := dims.Check(raw2l1.TimeDim, ChannelDim); err != nil {
		return nil, err
	}
	if err := Units.CheckAll(conversions); err != nil {
		return nil, err
	}
	offset, err := cfg.Float("local_offset", 0)
	if err != nil {
		return nil, err
	}
	nt, nc := dims[raw2l1.TimeDim], dims[ChannelDim]
	mf, mi := cfg.MissingFloat, cfg.MissingInt
	var (
		times     = make([]time.Time, nt)
		freq      = raw2l1.Floats(nc, mf)
		tb        = raw2l1.Profiles(mf, nt, nc)
		rain      = raw2l1.Ints(nt, mi)
		elevation = raw2l1.Floats(nt, mf)
		azimuth   = raw2l1.Floats(nt, mf)
		i, read   int
	)
	for _, file := range files {
		b, err := openBRT(file)
		if err != nil {
			skip(cfg, file, err)
			continue
		}
		if int(b.Channels) != nc {
			b.Close()
			return nil, raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s: %d channels instead of %d", file, b.Channels, nc)
		}
		if read == 0 {
			for c, f := range b.freq {
				freq[c] = codec.GigahertzToHertz.Apply(float64(f), mf)
			}
		}
		read++
		var shift time.Duration
		if b.TimeRef == TimeLocal {
			shift = time.Duration(offset * float64(time.Hour))
			cfg.Log.WithField("file", file).Warn(raw2l1.ErrMalformed.Msg(
				"record times are local; shifted by %v to UTC", -shift))
		}
		err = decodeRecords(b, i, nt, func(r *record) {
			times[i] = r.time.Add(-shift)
			raw2l1.SetRow(tb, i, r.tb)
			rain[i] = r.rain
			elevation[i] = r.elevation
			azimuth[i] = r.azimuth
			i++
		})
		b.Close()
		if err != nil {
			return nil, raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s: %v", file, err)
		}
	}
	if read == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoInput, "none of the %d input files could be read", len(files))
	}
	return raw2l1.Data{
		"time":      times,
		"frequency": freq,
		"tb":        tb,
		"rain_flag": rain,
		"elevation": elevation,
		"azimuth":   azimuth,
	}, nil
}

// decodeRecords calls fn for each complete record of b. The records must
// fit in the nt time steps following the i already filled.
func decodeRecords(b *brtFile, i, nt int, fn func(*record)) error {
	if i+b.complete > nt {
		return fmt.Errorf("%d records past the %d scanned", i+b.complete-nt, nt)
	}
	for k := 0; k < b.complete; k++ {
		r, err := b.next()
		if err != nil {
			return fmt.Errorf("record %d: %v", k+1, err)
		}
		fn(r)
	}
	return nil
}
