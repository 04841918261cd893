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

// Package raw2l1 converts raw lidar, ceilometer and radiometer files into
// netCDF files whose dimensions, variables and attributes are defined by a
// configuration file.
//
// A run processes one calendar day for one instrument. The configured
// Reader first scans the input files to size every output array, then
// fills a Data dictionary in a single pass. The ncgen package maps the
// Data onto the file layout described by the configuration.
package raw2l1

// Version gives the version number.
const Version = "2.1.0"
