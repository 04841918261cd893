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

// Command raw2l1 converts the raw files of lidars, ceilometers and
// microwave radiometers to netCDF.
package main

import (
	"os"

	"github.com/ACTRIS-CCRES/raw2l1-sub000/raw2l1util"
)

func main() {
	os.Exit(raw2l1util.Execute(os.Args[1:]))
}
