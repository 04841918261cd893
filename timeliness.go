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

import "time"

// CheckTimeliness compares the newest valid timestamp in times with now.
// It fails with ErrInFuture if the newest timestamp lies more than maxFuture
// after now, and with ErrTooOld if it lies more than maxAge before now.
// A zero maxAge disables the age check. Zero timestamps are treated as
// missing.
func CheckTimeliness(times []time.Time, now time.Time, maxAge, maxFuture time.Duration) error {
	var newest time.Time
	for _, t := range times {
		if !t.IsZero() && t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return Errorf(ErrTimestamp, "no valid timestamp in the decoded data")
	}
	if newest.Sub(now) > maxFuture {
		return Errorf(ErrInFuture, "newest timestamp %s is in the future (now %s)",
			newest.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	if maxAge > 0 && now.Sub(newest) > maxAge {
		return Errorf(ErrTooOld, "newest timestamp %s is older than %s (now %s)",
			newest.Format(time.RFC3339), maxAge, now.Format(time.RFC3339))
	}
	return nil
}
