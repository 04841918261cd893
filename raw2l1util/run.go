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

package raw2l1util

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/conf"
	"github.com/ACTRIS-CCRES/raw2l1-sub000/ncgen"
	"github.com/sirupsen/logrus"
)

// RunOptions holds the settings of one conversion.
type RunOptions struct {
	// Date is the processing day.
	Date time.Time

	// ConfPath is the instrument configuration file.
	ConfPath string

	// Output is the netCDF file to write.
	Output string

	// Inputs are the raw files, as paths or glob patterns.
	Inputs []string

	// Ancillary lists the ancillary files handed to the reader.
	Ancillary []string

	// OverlapFile, if set, overrides the overlap_file option of the
	// configuration file.
	OverlapFile string

	// CheckTimeliness enables the timeliness check even if the
	// configuration file does not.
	CheckTimeliness bool

	// Now is the wall-clock time of the run. It defaults to the current
	// time.
	Now time.Time

	Log logrus.FieldLogger
}

// Run converts the input files of one day into a netCDF file. The
// configuration is fully validated before any input file is opened, and
// no output file is left in place when Run fails.
func Run(o RunOptions) error {
	log := o.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := o.Now
	if now.IsZero() {
		now = time.Now()
	}

	cfg, err := conf.Load(o.ConfPath)
	if err != nil {
		return err
	}
	if o.OverlapFile != "" {
		cfg.OverlapFile = o.OverlapFile
	}
	r, err := raw2l1.LoadReader(cfg.Reader)
	if err != nil {
		return err
	}
	rc, err := raw2l1.NewReaderConfig(o.Date, cfg.ReaderConf, o.Ancillary, log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"reader": cfg.Reader,
		"date":   o.Date.Format("2006-01-02"),
		"config": o.ConfPath,
	}).Info("starting conversion")

	files, err := Glob(o.Inputs, log)
	if err != nil {
		return err
	}
	log.WithField("files", len(files)).Info("input files found")

	dims, err := r.ScanDimensions(files, rc)
	if err != nil {
		return err
	}
	log.WithField("dimensions", dims).Debug("dimensions scanned")
	data, err := r.Decode(files, dims, rc)
	if err != nil {
		return err
	}

	if cfg.CheckTimeliness || o.CheckTimeliness {
		times, err := data.Times(raw2l1.TimeDim)
		if err != nil {
			return err
		}
		if err := raw2l1.CheckTimeliness(times, now, cfg.MaxAge, cfg.MaxFuture); err != nil {
			return err
		}
	}

	f, err := ncgen.Build(cfg, data, ncgen.Options{Now: now, Log: log})
	if err != nil {
		return err
	}
	if cfg.FilterDay {
		if err := f.FilterDay(o.Date); err != nil {
			return err
		}
	}
	err = ncgen.Write(f, o.Output, ncgen.WriteOptions{
		Format:           cfg.Format,
		Compression:      cfg.Compression,
		CompressionLevel: cfg.CompressionLevel,
		Log:              log,
	})
	if err != nil {
		return err
	}
	log.WithField("output", o.Output).Info("conversion finished")
	return nil
}

// Glob expands the input patterns in order. Environment variables in the
// patterns are expanded first. A pattern matching nothing is logged; no
// match at all is an ErrNoInput error. Files matched by several patterns
// are kept once.
func Glob(patterns []string, log logrus.FieldLogger) ([]string, error) {
	var (
		files []string
		seen  = make(map[string]bool)
	)
	for _, p := range patterns {
		p = os.ExpandEnv(p)
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, raw2l1.Errorf(raw2l1.ErrConfigValue, "input pattern %q: %v", p, err)
		}
		if len(matches) == 0 {
			log.Warn(raw2l1.ErrNoInputMatch.Msg("no file matches %s", p))
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, raw2l1.Errorf(raw2l1.ErrNoInput, "no input file found")
	}
	return files, nil
}
