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
	"testing"
	"time"
)

func TestNewReaderConfig(t *testing.T) {
	date := time.Date(2024, 3, 5, 13, 4, 0, 0, time.UTC)
	t.Run("defaults", func(t *testing.T) {
		c, err := NewReaderConfig(date, nil, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if c.MissingInt != -9 || c.MissingFloat != -999 {
			t.Errorf("missing values %d, %g", c.MissingInt, c.MissingFloat)
		}
		if !c.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date %v", c.Date)
		}
	})
	t.Run("override", func(t *testing.T) {
		c, err := NewReaderConfig(date, map[string]string{
			"Missing_Int":      "-1",
			"missing_float":    "-9999.",
			"scale_invalidate": "false",
			"n_channels":       "14",
			"timestamp_format": "%Y-%m-%d",
		}, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if c.MissingInt != -1 || c.MissingFloat != -9999 {
			t.Errorf("missing values %d, %g", c.MissingInt, c.MissingFloat)
		}
		b, err := c.Bool("scale_invalidate", true)
		if err != nil || b {
			t.Errorf("bool %v, %v", b, err)
		}
		n, err := c.Int("n_channels", 7)
		if err != nil || n != 14 {
			t.Errorf("int %v, %v", n, err)
		}
		if s := c.String("timestamp_format", ""); s != "%Y-%m-%d" {
			t.Errorf("string %q", s)
		}
		if !c.Has("N_CHANNELS") || c.Has("other") {
			t.Error("Has is wrong")
		}
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := NewReaderConfig(date, map[string]string{"missing_float": "abc"}, nil, nil)
		if CodeOf(err) != ErrConfigValue {
			t.Errorf("got %v", err)
		}
	})
}
