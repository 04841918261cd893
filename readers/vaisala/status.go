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

package vaisala

import (
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ctessum/unit"
)

// UnitsMeters is set in the status word when heights are reported in
// meters. Heights are in feet otherwise.
const UnitsMeters = 0x80

// Status is the table of the status word bits. Bits documented for
// software level 2 only carry MinVersion 2.
var Status = codec.StatusTable{
	{Mask: 0x800000000000, Severity: codec.Alarm, Msg: "Transmitter shut-off"},
	{Mask: 0x400000000000, Severity: codec.Alarm, Msg: "Transmitter failure"},
	{Mask: 0x200000000000, Severity: codec.Alarm, Msg: "Receiver failure"},
	{Mask: 0x100000000000, Severity: codec.Alarm, Msg: "Voltage failure"},
	{Mask: 0x040000000000, Severity: codec.Alarm, Msg: "Memory error"},
	{Mask: 0x020000000000, Severity: codec.Alarm, Msg: "Light path obstruction"},
	{Mask: 0x010000000000, Severity: codec.Alarm, Msg: "Receiver saturation"},

	{Mask: 0x000080000000, Severity: codec.Warning, Msg: "Window contaminated"},
	{Mask: 0x000040000000, Severity: codec.Warning, Msg: "Battery voltage low"},
	{Mask: 0x000020000000, Severity: codec.Warning, Msg: "Transmitter expires"},
	{Mask: 0x000010000000, Severity: codec.Warning, Msg: "High humidity"},
	{Mask: 0x000004000000, Severity: codec.Warning, Msg: "Blower failure"},
	{Mask: 0x000001000000, Severity: codec.Warning, Msg: "Humidity sensor failure"},
	{Mask: 0x000000800000, Severity: codec.Warning, Msg: "Heater fault"},
	{Mask: 0x000000400000, Severity: codec.Warning, Msg: "High background radiance"},
	{Mask: 0x000000200000, Severity: codec.Warning, Msg: "Ceilometer engine board failure"},
	{Mask: 0x000000100000, Severity: codec.Warning, Msg: "Battery failure"},
	{Mask: 0x000000080000, Severity: codec.Warning, Msg: "Laser monitor failure"},
	{Mask: 0x000000040000, Severity: codec.Warning, Msg: "Receiver warning"},
	{Mask: 0x000000020000, Severity: codec.Warning, Msg: "Tilt angle > 45 degrees warning", MinVersion: 2},

	{Mask: 0x000000008000, Severity: codec.Info, Msg: "Blower is on"},
	{Mask: 0x000000004000, Severity: codec.Info, Msg: "Blower heater is on"},
	{Mask: 0x000000002000, Severity: codec.Info, Msg: "Internal heater is on"},
	{Mask: 0x000000000800, Severity: codec.Info, Msg: "Polling mode is on"},
	{Mask: 0x000000000400, Severity: codec.Info, Msg: "Working from battery"},
	{Mask: 0x000000000200, Severity: codec.Info, Msg: "Single sequence mode is on"},
	{Mask: 0x000000000100, Severity: codec.Info, Msg: "Manual settings are effective"},
	{Mask: UnitsMeters, Severity: codec.Info, Msg: "Units are meters if on, else feet"},
	{Mask: 0x000000000040, Severity: codec.Info, Msg: "Manual blower control"},
	{Mask: 0x000000000020, Severity: codec.Info, Msg: "Standby mode is on", MinVersion: 2},
	{Mask: 0x000000000010, Severity: codec.Info, Msg: "Tilt angle is negative"},
}

// Units holds the dimensions of the converted data keys.
var Units = codec.UnitTable{
	"cbh":                 unit.Meter,
	"vertical_visibility": unit.Meter,
	"highest_signal":      unit.Meter,
	"cloud_height":        unit.Meter,
	"laser_temp":          unit.Kelvin,
}

var heightConversions = []codec.Conversion{codec.FeetToMeters, codec.MetersToMeters}

// conversions lists the conversions applied to each data key.
var conversions = map[string][]codec.Conversion{
	"cbh":                 heightConversions,
	"vertical_visibility": heightConversions,
	"highest_signal":      heightConversions,
	"cloud_height":        heightConversions,
	"laser_temp":          {codec.CelsiusToKelvin},
}

// heightUnits returns the conversion of reported heights to meters and
// the step of sky condition heights in the reported unit.
func heightUnits(word uint64, version float64) (codec.Conversion, float64) {
	if Status.Set(word, version, UnitsMeters) {
		return codec.MetersToMeters, 10
	}
	return codec.FeetToMeters, 100
}
