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
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// TimeParser returns a function reading the time stamps written with a
// strftime-style format, as found in reader options such as
// "%Y-%m-%d %H:%M:%S". Surrounding blanks are ignored and time stamps
// without a zone are read as UTC.
func TimeParser(format string) (func(string) (time.Time, error), error) {
	ref := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if _, err := timefmt.Parse(timefmt.Format(ref, format), format); err != nil {
		return nil, fmt.Errorf("time format %q: %v", format, err)
	}
	return func(s string) (time.Time, error) {
		return timefmt.Parse(strings.TrimSpace(s), format)
	}, nil
}
