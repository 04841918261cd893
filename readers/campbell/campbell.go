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

// Package campbell decodes the messages 001 to 006 of Campbell
// Scientific CS135 ceilometers logged as text, one time stamp line
// before each message.
package campbell

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ctessum/sparse"
)

// Name is the name the reader is registered under.
const Name = "campbell_cs135"

// SkyLayerDim is the dimension of the sky condition layers.
const SkyLayerDim = "sky_layer"

// Default reader options.
const (
	DefaultTimeFormat    = "%Y-%m-%dT%H:%M:%S"
	DefaultStartPattern  = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`
	DefaultProfileFactor = 1e-8
)

func init() {
	raw2l1.RegisterReader(Name, func() raw2l1.Reader { return Reader{} })
}

// Reader decodes CS135 logs. Its reader_conf options are time_format,
// start_pattern, profile_factor, scale_ok and scale_invalidate. Scale
// invalidation is off unless scale_invalidate is true.
type Reader struct{}

type config struct {
	framer     *codec.Framer
	factor     float64
	scaleOK    float64
	invalidate bool
}

func configure(cfg *raw2l1.ReaderConfig) (*config, error) {
	parseTime, err := codec.TimeParser(cfg.String("time_format", DefaultTimeFormat))
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "reader_conf option time_format: %v", err)
	}
	start, err := regexp.Compile(cfg.String("start_pattern", DefaultStartPattern))
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "reader_conf option start_pattern: %v", err)
	}
	c := &config{framer: &codec.Framer{
		Start: start,
		ParseTime: parseTime,
		TypeLine: 1,
		Type: func(line string) (string, bool) {
			h, err := parseHeader(line)
			return h.typ(), err == nil
		},
		Lines: frameLines(),
	}}
	if c.factor, err = cfg.Float("profile_factor", DefaultProfileFactor); err != nil {
		return nil, err
	}
	if c.scaleOK, err = cfg.Float("scale_ok", codec.ScaleOK); err != nil {
		return nil, err
	}
	if c.invalidate, err = cfg.Bool("scale_invalidate", false); err != nil {
		return nil, err
	}
	if err := Units.CheckAll(conversions); err != nil {
		return nil, err
	}
	return c, nil
}

// ScanDimensions counts the messages of files and reads the number of
// gates from the first decodable message.
func (Reader) ScanDimensions(files []string, cfg *raw2l1.ReaderConfig) (raw2l1.Dims, error) {
	c, err := configure(cfg)
	if err != nil {
		return nil, err
	}
	dimsOf := func(m *codec.Message) (raw2l1.Dims, error) {
		r, err := parseMessage(m, c.factor)
		if err != nil {
			return nil, err
		}
		return raw2l1.Dims{raw2l1.RangeDim: r.gates, raw2l1.LayerDim: Layers, SkyLayerDim: SkyLayers}, nil
	}
	return codec.ScanText(files, c.framer, dimsOf, cfg.Log)
}

// Decode fills the data of files in one pass.
func (Reader) Decode(files []string, dims raw2l1.Dims, cfg *raw2l1.ReaderConfig) (raw2l1.Data, error) {
	c, err := configure(cfg)
	if err != nil {
		return nil, err
	}
	if err := dims.Check(raw2l1.TimeDim, raw2l1.RangeDim); err != nil {
		return nil, err
	}
	nt, nr := dims[raw2l1.TimeDim], dims[raw2l1.RangeDim]
	mf, mi := cfg.MissingFloat, cfg.MissingInt

	var (
		times      = make([]time.Time, nt)
		rcs        = raw2l1.Profiles(mf, nt, nr)
		cbh        = raw2l1.Profiles(mf, nt, Layers)
		vv         = raw2l1.Floats(nt, mf)
		highest    = raw2l1.Floats(nt, mf)
		detection  = raw2l1.Ints(nt, mi)
		alarm      = raw2l1.Ints(nt, mi)
		status     = raw2l1.Ints(nt, mi)
		msgType    = raw2l1.Ints(nt, mi)
		scale      = raw2l1.Floats(nt, mf)
		energy     = raw2l1.Floats(nt, mf)
		laserTemp  = raw2l1.Floats(nt, mf)
		tilt       = raw2l1.Floats(nt, mf)
		background = raw2l1.Floats(nt, mf)
		pulses     = raw2l1.Floats(nt, mf)
		sampleRate = raw2l1.Floats(nt, mf)
		sum        = raw2l1.Floats(nt, mf)
		amount     = raw2l1.IntProfiles(mi, nt, SkyLayers)
		skyHeight  = raw2l1.Profiles(mf, nt, SkyLayers)
		tally      = codec.NewStatusTally()
		first      *record
		i          int
	)

	c.framer.Reset()
	err = codec.WalkText(files, c.framer, cfg.Log, func(file string, m *codec.Message) error {
		if i >= nt {
			return raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s:%d: more than the %d scanned messages", file, m.Line, nt)
		}
		ti := i
		i++
		times[ti] = m.Time
		if m.Err != nil {
			cfg.Log.WithField("file", file).Warn(m.Err)
			return nil
		}
		r, err := parseMessage(m, c.factor)
		if err == nil && r.gates != nr {
			err = fmt.Errorf("%d gates instead of %d", r.gates, nr)
		}
		if err != nil {
			cfg.Log.WithField("file", file).Warn(raw2l1.ErrMalformed.Msg("message at line %d: %v", m.Line, err))
			return nil
		}
		if first == nil {
			first = r
		}
		version := r.header.version()
		conv, step := heightUnits(r.status, version)
		if r.profile != nil {
			raw2l1.SetRow(rcs, ti, r.profile)
		}
		if r.detection >= 0 {
			detection[ti] = r.detection
		}
		alarm[ti] = r.alarm
		status[ti] = int(r.status)
		msgType[ti] = r.header.number
		if r.detection == 4 {
			if r.heightOK[0] {
				vv[ti] = conv.Apply(r.heights[0], mf)
			}
			if r.heightOK[1] {
				highest[ti] = conv.Apply(r.heights[1], mf)
			}
		} else {
			row := raw2l1.Row(cbh, ti)
			for l, ok := range r.heightOK {
				if ok {
					row[l] = conv.Apply(r.heights[l], mf)
				}
			}
		}
		if r.hasSky {
			for l := 0; l < SkyLayers; l++ {
				if r.amounts[l] >= 0 {
					amount.Elements[ti*SkyLayers+l] = r.amounts[l]
				}
				if r.skyHeights[l] >= 0 {
					raw2l1.Row(skyHeight, ti)[l] = conv.Apply(r.skyHeights[l]*step, mf)
				}
			}
		}
		scale[ti] = r.scale
		energy[ti] = r.energy
		laserTemp[ti] = codec.CelsiusToKelvin.Apply(r.laserTemp, mf)
		tilt[ti] = r.tilt
		background[ti] = r.background
		pulses[ti] = r.pulses
		sampleRate[ti] = r.sampleRate
		sum[ti] = r.sum

		codec.InvalidateRecord(ti, r.scale, c.scaleOK, c.invalidate, mf,
			[]*sparse.DenseArray{rcs}, [][]float64{sum})
		tally.Add(Status.Decode(r.status, version))
		return nil
	})
	if err != nil {
		return nil, err
	}
	tally.Summarize(cfg.Log)

	rangeGates := raw2l1.Floats(nr, mf)
	d := raw2l1.Data{
		"time":                times,
		"range":               rangeGates,
		"rcs_0":               rcs,
		"cbh":                 cbh,
		"vertical_visibility": vv,
		"highest_signal":      highest,
		"detection_status":    detection,
		"alarm_status":        alarm,
		"status_word":         status,
		"message_type":        msgType,
		"scale":               scale,
		"laser_energy":        energy,
		"laser_temp":          laserTemp,
		"tilt_angle":          tilt,
		"background_light":    background,
		"pulse_quantity":      pulses,
		"sample_rate":         sampleRate,
		"sum_backscatter":     sum,
		"cloud_amount":        amount,
		"cloud_height":        skyHeight,
	}
	if first != nil {
		for g := range rangeGates {
			rangeGates[g] = float64(g+1) * first.resolution
		}
		d["resolution"] = first.resolution
		d["instrument_id"] = first.header.id
		d["os_version"] = strconv.FormatFloat(first.header.version(), 'f', 2, 64)
	}
	return d, nil
}
