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

// Package vaisala decodes the data messages of Vaisala CL31 and CL51
// ceilometers, logged as text files in which every message follows a
// time stamp line.
//
// The reader fills the following keys: time, range, rcs_0 (time, range),
// cbh (time, layer), vertical_visibility, highest_signal,
// detection_status, alarm_status, status_word, scale, laser_energy,
// laser_temp, window_transmission, tilt_angle, background_light,
// sum_backscatter, measurement_parameters, cloud_amount and cloud_height
// (time, sky_layer), and the scalars resolution, instrument_id and
// software_level. Heights are in meters and temperatures in kelvins.
package vaisala

import (
	"regexp"
	"strconv"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ctessum/sparse"
)

// Name is the name the reader is registered under.
const Name = "vaisala_cl"

// SkyLayerDim is the dimension of the sky condition layers.
const SkyLayerDim = "sky_layer"

// Default reader options.
const (
	DefaultTimeFormat    = "-%Y-%m-%d %H:%M:%S"
	DefaultStartPattern  = `^-\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}`
	DefaultProfileFactor = 1e-8
)

func init() {
	raw2l1.RegisterReader(Name, func() raw2l1.Reader { return new(Reader) })
}

// Reader decodes CL31 and CL51 messages 1 and 2. It understands the
// reader_conf options time_format (strftime layout of the time stamp
// line), start_pattern (regular expression matching the time stamp line),
// profile_factor, scale_ok and scale_invalidate. Profiles of records
// whose scale differs from scale_ok are invalidated unless
// scale_invalidate is false.
type Reader struct{}

type options struct {
	framer     *codec.Framer
	factor     float64
	invalidate bool
	scaleOK    float64
}

func newOptions(cfg *raw2l1.ReaderConfig) (*options, error) {
	parseTime, err := codec.TimeParser(cfg.String("time_format", DefaultTimeFormat))
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "reader_conf option time_format: %v", err)
	}
	start, err := regexp.Compile(cfg.String("start_pattern", DefaultStartPattern))
	if err != nil {
		return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "reader_conf option start_pattern: %v", err)
	}
	o := &options{
		framer: &codec.Framer{
			Start: start,
			ParseTime: parseTime,
			TypeLine: 1,
			Type: func(line string) (string, bool) {
				h, err := parseHeader(line)
				if err != nil {
					return "", false
				}
				return h.typ(), true
			},
			Lines: messageTypes(),
		},
	}
	if o.factor, err = cfg.Float("profile_factor", DefaultProfileFactor); err != nil {
		return nil, err
	}
	if o.scaleOK, err = cfg.Float("scale_ok", codec.ScaleOK); err != nil {
		return nil, err
	}
	if o.invalidate, err = cfg.Bool("scale_invalidate", true); err != nil {
		return nil, err
	}
	if err := Units.CheckAll(conversions); err != nil {
		return nil, err
	}
	return o, nil
}

// ScanDimensions counts the messages in files. The range dimension is the
// number of gates of the first decodable message and must be the same in
// every other message.
func (Reader) ScanDimensions(files []string, cfg *raw2l1.ReaderConfig) (raw2l1.Dims, error) {
	o, err := newOptions(cfg)
	if err != nil {
		return nil, err
	}
	return codec.ScanText(files, o.framer, func(m *codec.Message) (raw2l1.Dims, error) {
		r, err := parseMessage(m, o.factor)
		if err != nil {
			return nil, err
		}
		return raw2l1.Dims{
			raw2l1.RangeDim: r.gates,
			raw2l1.LayerDim: Layers,
			SkyLayerDim:     SkyLayers,
		}, nil
	}, cfg.Log)
}

// series holds the decoded arrays.
type series struct {
	time        []time.Time
	rangeGates  []float64
	rcs         *sparse.DenseArray
	cbh         *sparse.DenseArray
	vv          []float64
	highest     []float64
	detection   []int
	alarm       []int
	status      []int
	scale       []float64
	energy      []float64
	laserTemp   []float64
	window      []float64
	tilt        []float64
	background  []float64
	sum         []float64
	params      []string
	cloudAmount *sparse.DenseArrayInt
	cloudHeight *sparse.DenseArray
}

func newSeries(nt, nr int, mf float64, mi int) *series {
	return &series{
		time:        make([]time.Time, nt),
		rangeGates:  raw2l1.Floats(nr, mf),
		rcs:         raw2l1.Profiles(mf, nt, nr),
		cbh:         raw2l1.Profiles(mf, nt, Layers),
		vv:          raw2l1.Floats(nt, mf),
		highest:     raw2l1.Floats(nt, mf),
		detection:   raw2l1.Ints(nt, mi),
		alarm:       raw2l1.Ints(nt, mi),
		status:      raw2l1.Ints(nt, mi),
		scale:       raw2l1.Floats(nt, mf),
		energy:      raw2l1.Floats(nt, mf),
		laserTemp:   raw2l1.Floats(nt, mf),
		window:      raw2l1.Floats(nt, mf),
		tilt:        raw2l1.Floats(nt, mf),
		background:  raw2l1.Floats(nt, mf),
		sum:         raw2l1.Floats(nt, mf),
		params:      make([]string, nt),
		cloudAmount: raw2l1.IntProfiles(mi, nt, SkyLayers),
		cloudHeight: raw2l1.Profiles(mf, nt, SkyLayers),
	}
}

// store copies record r to time index i.
func (s *series) store(i int, r *record, mf float64) {
	conv, step := heightUnits(r.status, r.header.version())

	raw2l1.SetRow(s.rcs, i, r.profile)
	if r.detection >= 0 {
		s.detection[i] = r.detection
	}
	s.alarm[i] = r.alarm
	s.status[i] = int(r.status)
	if r.detection == 4 {
		// Full obscuration: vertical visibility and highest signal
		// replace the first two cloud bases.
		if r.heightOK[0] {
			s.vv[i] = conv.Apply(r.heights[0], mf)
		}
		if r.heightOK[1] {
			s.highest[i] = conv.Apply(r.heights[1], mf)
		}
	} else {
		for l := 0; l < Layers; l++ {
			if r.heightOK[l] {
				s.cbh.Elements[i*Layers+l] = conv.Apply(r.heights[l], mf)
			}
		}
	}
	if r.hasSky {
		for l := 0; l < SkyLayers; l++ {
			if !r.skyOK[l] {
				continue
			}
			s.cloudAmount.Elements[i*SkyLayers+l] = r.sky[l].amount
			if h := r.sky[l].height; h >= 0 {
				s.cloudHeight.Elements[i*SkyLayers+l] = conv.Apply(h*step, mf)
			}
		}
	}
	s.scale[i] = r.scale
	s.energy[i] = r.energy
	s.laserTemp[i] = codec.CelsiusToKelvin.Apply(r.laserTemp, mf)
	s.window[i] = r.window
	s.tilt[i] = r.tilt
	s.background[i] = r.background
	s.sum[i] = r.sumBackscatter
	s.params[i] = r.params
}

func (s *series) data() raw2l1.Data {
	return raw2l1.Data{
		"time":                   s.time,
		"range":                  s.rangeGates,
		"rcs_0":                  s.rcs,
		"cbh":                    s.cbh,
		"vertical_visibility":    s.vv,
		"highest_signal":         s.highest,
		"detection_status":       s.detection,
		"alarm_status":           s.alarm,
		"status_word":            s.status,
		"scale":                  s.scale,
		"laser_energy":           s.energy,
		"laser_temp":             s.laserTemp,
		"window_transmission":    s.window,
		"tilt_angle":             s.tilt,
		"background_light":       s.background,
		"sum_backscatter":        s.sum,
		"measurement_parameters": s.params,
		"cloud_amount":           s.cloudAmount,
		"cloud_height":           s.cloudHeight,
	}
}

// Decode fills the data of files in one pass. Malformed messages are
// logged and leave missing values at their time index.
func (Reader) Decode(files []string, dims raw2l1.Dims, cfg *raw2l1.ReaderConfig) (raw2l1.Data, error) {
	o, err := newOptions(cfg)
	if err != nil {
		return nil, err
	}
	if err := dims.Check(raw2l1.TimeDim, raw2l1.RangeDim); err != nil {
		return nil, err
	}
	nt, nr := dims[raw2l1.TimeDim], dims[raw2l1.RangeDim]
	mf := cfg.MissingFloat
	s := newSeries(nt, nr, mf, cfg.MissingInt)
	tally := codec.NewStatusTally()
	var (
		i     int
		first *record
	)
	o.framer.Reset()
	err = codec.WalkText(files, o.framer, cfg.Log, func(file string, m *codec.Message) error {
		idx := i
		i++
		if idx >= nt {
			return raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s:%d: more than the %d scanned messages", file, m.Line, nt)
		}
		s.time[idx] = m.Time
		log := cfg.Log.WithField("file", file)
		if m.Err != nil {
			log.Warn(m.Err)
			return nil
		}
		r, err := parseMessage(m, o.factor)
		if err != nil {
			log.Warn(raw2l1.ErrMalformed.Msg("message at line %d: %v", m.Line, err))
			return nil
		}
		if r.gates != nr {
			log.Warn(raw2l1.ErrMalformed.Msg("message at line %d has %d gates, want %d", m.Line, r.gates, nr))
			return nil
		}
		if first == nil {
			first = r
		}
		s.store(idx, r, mf)
		codec.InvalidateRecord(idx, r.scale, o.scaleOK, o.invalidate, mf,
			[]*sparse.DenseArray{s.rcs}, [][]float64{s.sum})
		tally.Add(Status.Decode(r.status, r.header.version()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	tally.Summarize(cfg.Log)

	d := s.data()
	if first != nil {
		for g := range s.rangeGates {
			s.rangeGates[g] = float64(g+1) * first.resolution
		}
		d["resolution"] = first.resolution
		d["instrument_id"] = first.header.id
		d["software_level"] = strconv.FormatFloat(first.header.version(), 'f', 2, 64)
	}
	return d, nil
}
