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

// Package lufft decodes the netCDF files written by Lufft CHM15k
// ceilometers. The files already hold the time, range and layer
// dimensions; the reader concatenates them along time and normalizes the
// units, which depend on the firmware version.
//
// The data keys are time, range, rcs_0, cbh, pbl, vor, sci, base,
// stddev, laser_pulses, state_optics, temp_int, temp_ext, temp_det,
// temp_lom, average_time and error_ext, and the scalars zenith,
// wavelength, instrument_id, software_version and firmware when the
// files provide them.
package lufft

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/ncgen"
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
)

// Name is the name the reader is registered under.
const Name = "lufft_chm15k_nc"

// Default reader options.
const (
	DefaultVersionAttr = "software_version"
	DefaultTimeUnits   = "seconds since 1904-01-01 00:00:00"
)

// Firmware branches.
const (
	legacy = "legacy" // temperatures in tenths of degrees Celsius
	v07    = "0.7"
	latest = "latest" // 48-bit error_ext, boundary layer heights
)

// Firmware is the software version table. Thresholds are inclusive.
var Firmware = codec.VersionTable{
	Rules:  []codec.VersionRule{{Max: 0.559, Tag: legacy}, {Max: 0.7, Tag: v07}},
	Latest: latest,
	Newest: 1.1,
}

var (
	tenthCelsius = codec.Conversion{Name: "0.1degC->K", Factor: 0.1, Offset: 273.15, To: unit.Kelvin}
	tenthKelvin  = codec.Conversion{Name: "0.1K->K", Factor: 0.1, To: unit.Kelvin}
)

type behavior struct {
	temp       codec.Conversion
	statusBits uint
	pbl        bool
}

var behaviors = map[string]behavior{
	legacy: {temp: tenthCelsius, statusBits: 32},
	v07:    {temp: tenthKelvin, statusBits: 32},
	latest: {temp: tenthKelvin, statusBits: 48, pbl: true},
}

var (
	plainSeries = []string{"vor", "sci", "base", "stddev", "laser_pulses", "state_optics"}
	tempSeries  = []string{"temp_int", "temp_ext", "temp_det", "temp_lom"}
)

// Units holds the dimensions of the converted data keys.
var Units = codec.UnitTable{
	"temp_int":     unit.Kelvin,
	"temp_ext":     unit.Kelvin,
	"temp_det":     unit.Kelvin,
	"temp_lom":     unit.Kelvin,
	"average_time": unit.Second,
}

func conversions() map[string][]codec.Conversion {
	temps := make([]codec.Conversion, 0, len(behaviors))
	for _, tag := range []string{legacy, v07, latest} {
		temps = append(temps, behaviors[tag].temp)
	}
	m := map[string][]codec.Conversion{"average_time": {codec.MillisecondsToSeconds}}
	for _, name := range tempSeries {
		m[name] = temps
	}
	return m
}

func init() {
	raw2l1.RegisterReader(Name, func() raw2l1.Reader { return Reader{} })
}

// Reader decodes CHM15k files. Its only reader_conf option,
// version_attribute, names the global attribute holding the software
// version.
type Reader struct{}

// ScanDimensions sums the time steps of files. The range and layer sizes
// of the first readable file are used for the whole set.
func (Reader) ScanDimensions(files []string, cfg *raw2l1.ReaderConfig) (raw2l1.Dims, error) {
	dims, _, err := codec.ScanContainers(files, raw2l1.TimeDim,
		[]string{raw2l1.RangeDim, raw2l1.LayerDim}, cfg.Log)
	return dims, err
}

// Decode reads files in order into arrays sized from dims.
func (Reader) Decode(files []string, dims raw2l1.Dims, cfg *raw2l1.ReaderConfig) (raw2l1.Data, error) {
	if err := dims.Check(raw2l1.TimeDim, raw2l1.RangeDim, raw2l1.LayerDim); err != nil {
		return nil, err
	}
	if err := Units.CheckAll(conversions()); err != nil {
		return nil, err
	}
	d := newDecoder(dims, cfg)
	read := 0
	for _, file := range files {
		g, err := netcdf.Open(file)
		if err != nil {
			cfg.Log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: %v", file, err))
			continue
		}
		err = d.file(file, g)
		g.Close()
		if err != nil {
			if raw2l1.CodeOf(err) != 0 {
				return nil, err
			}
			cfg.Log.Warn(raw2l1.ErrFileSkipped.Msg("skipping %s: %v", file, err))
			continue
		}
		read++
	}
	if read == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoInput, "none of the %d input files could be read", len(files))
	}
	d.tally.Summarize(cfg.Log)
	return d.data(), nil
}

type decoder struct {
	cfg         *raw2l1.ReaderConfig
	versionAttr string
	nt, nr, nl  int
	i           int

	times     []time.Time
	rng       []float64
	haveRange bool
	rcs       *sparse.DenseArray
	cbh       *sparse.DenseArray
	pbl       *sparse.DenseArray
	series    map[string][]float64
	status    []int
	tally     *codec.StatusTally

	meta raw2l1.Data
}

func newDecoder(dims raw2l1.Dims, cfg *raw2l1.ReaderConfig) *decoder {
	nt, nr, nl := dims[raw2l1.TimeDim], dims[raw2l1.RangeDim], dims[raw2l1.LayerDim]
	mf := cfg.MissingFloat
	d := &decoder{
		cfg:         cfg,
		versionAttr: cfg.String("version_attribute", DefaultVersionAttr),
		nt:          nt,
		nr:          nr,
		nl:          nl,
		times:       make([]time.Time, nt),
		rng:         raw2l1.Floats(nr, mf),
		rcs:         raw2l1.Profiles(mf, nt, nr),
		cbh:         raw2l1.Profiles(mf, nt, nl),
		pbl:         raw2l1.Profiles(mf, nt, nl),
		series:      make(map[string][]float64),
		status:      raw2l1.Ints(nt, cfg.MissingInt),
		tally:       codec.NewStatusTally(),
	}
	for _, name := range append(append([]string{"average_time"}, plainSeries...), tempSeries...) {
		d.series[name] = raw2l1.Floats(nt, mf)
	}
	return d
}

func (d *decoder) warn(file string, err error) {
	d.cfg.Log.WithField("file", file).Warn(raw2l1.ErrMalformed.Msg("%v", err))
}

// file decodes one file into the records following the ones already
// filled. Errors without a code skip the file.
func (d *decoder) file(file string, g api.Group) error {
	log := d.cfg.Log.WithField("file", file)
	version, _ := codec.StringAttr(g.Attributes(), d.versionAttr)
	tag, v := Firmware.Select(version, log)
	b := behaviors[tag]

	secs, shape, err := codec.ReadVar(g, "time", math.NaN())
	if err != nil {
		return err
	}
	if len(shape) != 1 {
		return fmt.Errorf("time has shape %v", shape)
	}
	nt := len(secs)
	if d.i+nt > d.nt {
		return raw2l1.Errorf(raw2l1.ErrDimMismatch, "%s: %d time steps past the %d scanned", file, d.i+nt-d.nt, d.nt)
	}
	tu := timeUnits(g, log)
	off := d.i
	d.i += nt
	for k, s := range secs {
		if math.IsNaN(s) {
			d.warn(file, fmt.Errorf("record %d has no time", k))
			continue
		}
		sec, frac := math.Modf(s * tu.Seconds)
		d.times[off+k] = tu.Ref.Add(time.Duration(sec)*time.Second + time.Duration(math.Round(frac*1e9)))
	}

	rng, _, err := codec.ReadVar(g, "range", d.cfg.MissingFloat)
	switch {
	case err != nil:
		d.warn(file, fmt.Errorf("%v; profiles skipped", err))
	case len(rng) != d.nr:
		d.warn(file, fmt.Errorf("%d range gates instead of %d; profiles skipped", len(rng), d.nr))
	default:
		if !d.haveRange {
			copy(d.rng, rng)
			d.haveRange = true
		}
		d.profile(file, g, "beta_raw", d.rcs, off, nt, d.nr)
	}
	d.profile(file, g, "cbh", d.cbh, off, nt, d.nl)
	if b.pbl {
		d.profile(file, g, "pbl", d.pbl, off, nt, d.nl)
	}

	for _, name := range plainSeries {
		d.timeSeries(file, g, name, off, nt, nil)
	}
	for _, name := range tempSeries {
		d.timeSeries(file, g, name, off, nt, &b.temp)
	}
	d.timeSeries(file, g, "average_time", off, nt, &codec.MillisecondsToSeconds)
	d.errorExt(file, g, off, nt, b, v)

	if d.meta == nil {
		d.meta = raw2l1.Data{"firmware": tag}
		if version != "" {
			d.meta["software_version"] = strings.TrimSpace(version)
		}
		if id, ok := codec.StringAttr(g.Attributes(), "serlom"); ok {
			d.meta["instrument_id"] = strings.TrimSpace(id)
		}
		for _, name := range []string{"zenith", "wavelength"} {
			if vals, _, err := codec.ReadVar(g, name, d.cfg.MissingFloat); err == nil && len(vals) == 1 {
				d.meta[name] = vals[0]
			}
		}
	}
	return nil
}

// timeUnits returns the units of the time variable. CHM15k files end the
// reference time with a bare " 00:00" offset.
func timeUnits(g api.Group, log logrus.FieldLogger) ncgen.TimeUnits {
	units := DefaultTimeUnits
	if vg, err := g.GetVarGetter("time"); err == nil {
		if s, ok := codec.StringAttr(vg.Attributes(), "units"); ok {
			units = strings.TrimSuffix(strings.TrimSpace(s), " 00:00")
		}
	}
	tu, err := ncgen.ParseTimeUnits(units)
	if err != nil {
		log.Warn(raw2l1.ErrMalformed.Msg("%v; using %q", err, DefaultTimeUnits))
		tu, _ = ncgen.ParseTimeUnits(DefaultTimeUnits)
	}
	return tu
}

// profile copies the (time, n) variable name into rows off to off+nt of
// dst.
func (d *decoder) profile(file string, g api.Group, name string, dst *sparse.DenseArray, off, nt, n int) {
	vals, shape, err := codec.ReadVar(g, name, d.cfg.MissingFloat)
	if err != nil {
		d.warn(file, err)
		return
	}
	if len(shape) != 2 || shape[0] != nt || shape[1] != n {
		d.warn(file, fmt.Errorf("variable %s has shape %v, want [%d %d]", name, shape, nt, n))
		return
	}
	copy(dst.Elements[off*n:], vals)
}

func (d *decoder) timeSeries(file string, g api.Group, name string, off, nt int, conv *codec.Conversion) {
	vals, shape, err := codec.ReadVar(g, name, d.cfg.MissingFloat)
	if err != nil {
		d.warn(file, err)
		return
	}
	if len(shape) != 1 || shape[0] != nt {
		d.warn(file, fmt.Errorf("variable %s has shape %v, want [%d]", name, shape, nt))
		return
	}
	if conv != nil {
		conv.ApplySlice(vals, d.cfg.MissingFloat)
	}
	copy(d.series[name][off:], vals)
}

// errorExt decodes the status words. Older firmware stores them as 32-bit
// integers, which read back negative when the highest bit is set.
func (d *decoder) errorExt(file string, g api.Group, off, nt int, b behavior, version float64) {
	vals, shape, err := codec.ReadVar(g, "error_ext", d.cfg.MissingFloat)
	if err != nil {
		d.warn(file, err)
		return
	}
	if len(shape) != 1 || shape[0] != nt {
		d.warn(file, fmt.Errorf("variable error_ext has shape %v, want [%d]", shape, nt))
		return
	}
	mask := uint64(1)<<b.statusBits - 1
	for k, x := range vals {
		if x == d.cfg.MissingFloat {
			continue
		}
		w := uint64(int64(x)) & mask
		d.status[off+k] = int(w)
		d.tally.Add(Status.Decode(w, version))
	}
}

func (d *decoder) data() raw2l1.Data {
	out := raw2l1.Data{
		"time":      d.times,
		"range":     d.rng,
		"rcs_0":     d.rcs,
		"cbh":       d.cbh,
		"pbl":       d.pbl,
		"error_ext": d.status,
	}
	for name, s := range d.series {
		out[name] = s
	}
	for k, v := range d.meta {
		out[k] = v
	}
	return out
}
