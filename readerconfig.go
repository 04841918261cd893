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

package raw2l1

import (
	"io/ioutil"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// ReaderConfig holds the options handed to a reader. It is built once at
// startup from the reader_conf section of the configuration file and passed
// down the call chain.
type ReaderConfig struct {
	// Date is the processing day, at 00:00 UTC.
	Date time.Time

	// MissingInt and MissingFloat are the sentinels written wherever a
	// value is unavailable.
	MissingInt   int
	MissingFloat float64

	// Ancillary holds the paths of any ancillary files.
	Ancillary []string

	// Log receives warnings about skipped files and records.
	Log logrus.FieldLogger

	options map[string]string
}

// NewReaderConfig validates the reader options and returns a ReaderConfig.
// The missing_int and missing_float options override the default sentinels.
// If log is nil, messages are discarded.
func NewReaderConfig(date time.Time, options map[string]string, ancillary []string, log logrus.FieldLogger) (*ReaderConfig, error) {
	if log == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		log = l
	}
	c := &ReaderConfig{
		Date:         time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		MissingInt:   DefaultMissingInt,
		MissingFloat: DefaultMissingFloat,
		Ancillary:    ancillary,
		Log:          log,
		options:      make(map[string]string),
	}
	for k, v := range options {
		c.options[strings.ToLower(k)] = v
	}
	var err error
	if c.MissingInt, err = c.Int("missing_int", DefaultMissingInt); err != nil {
		return nil, err
	}
	if c.MissingFloat, err = c.Float("missing_float", DefaultMissingFloat); err != nil {
		return nil, err
	}
	return c, nil
}

// Has reports whether the option key was set.
func (c *ReaderConfig) Has(key string) bool {
	_, ok := c.options[strings.ToLower(key)]
	return ok
}

// String returns option key, or def if it is not set.
func (c *ReaderConfig) String(key, def string) string {
	if v, ok := c.options[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// Float returns option key as a float64, or def if it is not set.
func (c *ReaderConfig) Float(key string, def float64) (float64, error) {
	v, ok := c.options[strings.ToLower(key)]
	if !ok {
		return def, nil
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(v))
	if err != nil {
		return def, Errorf(ErrConfigValue, "reader_conf option %s=%q: %v", key, v, err)
	}
	return f, nil
}

// Int returns option key as an int, or def if it is not set.
func (c *ReaderConfig) Int(key string, def int) (int, error) {
	v, ok := c.options[strings.ToLower(key)]
	if !ok {
		return def, nil
	}
	i, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		return def, Errorf(ErrConfigValue, "reader_conf option %s=%q: %v", key, v, err)
	}
	return i, nil
}

// Bool returns option key as a bool, or def if it is not set.
func (c *ReaderConfig) Bool(key string, def bool) (bool, error) {
	v, ok := c.options[strings.ToLower(key)]
	if !ok {
		return def, nil
	}
	b, err := cast.ToBoolE(strings.TrimSpace(v))
	if err != nil {
		return def, Errorf(ErrConfigValue, "reader_conf option %s=%q: %v", key, v, err)
	}
	return b, nil
}
