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

package campbell

import (
	"github.com/ACTRIS-CCRES/raw2l1-sub000/codec"
	"github.com/ctessum/unit"
)

// UnitsMeters is set in the status word when heights are in meters.
const UnitsMeters = 0x80

// Status is the table of the status word bits.
var Status = codec.StatusTable{
	{Mask: 0x80000000, Severity: codec.Alarm, Msg: "Laser shutdown due to operating temperature"},
	{Mask: 0x40000000, Severity: codec.Alarm, Msg: "Laser failure"},
	{Mask: 0x20000000, Severity: codec.Alarm, Msg: "Receiver failure"},
	{Mask: 0x10000000, Severity: codec.Alarm, Msg: "Voltage failure"},
	{Mask: 0x08000000, Severity: codec.Alarm, Msg: "Memory error"},
	{Mask: 0x04000000, Severity: codec.Alarm, Msg: "Laser shutdown by user", MinVersion: 1.06},

	{Mask: 0x00800000, Severity: codec.Warning, Msg: "Window contaminated"},
	{Mask: 0x00400000, Severity: codec.Warning, Msg: "Battery low"},
	{Mask: 0x00200000, Severity: codec.Warning, Msg: "Laser power low"},
	{Mask: 0x00100000, Severity: codec.Warning, Msg: "Laser temperature out of range"},
	{Mask: 0x00080000, Severity: codec.Warning, Msg: "Internal humidity high"},
	{Mask: 0x00040000, Severity: codec.Warning, Msg: "Tilt angle error"},
	{Mask: 0x00020000, Severity: codec.Warning, Msg: "Heater failure"},
	{Mask: 0x00010000, Severity: codec.Warning, Msg: "Background radiance high"},
	{Mask: 0x00008000, Severity: codec.Warning, Msg: "Dew heater failure", MinVersion: 1.06},

	{Mask: UnitsMeters, Severity: codec.Info, Msg: "Units are meters if on, else feet"},
	{Mask: 0x00000040, Severity: codec.Info, Msg: "Internal heater is on"},
	{Mask: 0x00000020, Severity: codec.Info, Msg: "Dew heater is on", MinVersion: 1.06},
	{Mask: 0x00000010, Severity: codec.Info, Msg: "Polling mode is on"},
	{Mask: 0x00000008, Severity: codec.Info, Msg: "Manual settings are effective"},
	{Mask: 0x00000004, Severity: codec.Info, Msg: "Standby mode is on"},
}

// Units holds the dimensions of the converted data keys.
var Units = codec.UnitTable{
	"cbh":                 unit.Meter,
	"vertical_visibility": unit.Meter,
	"highest_signal":      unit.Meter,
	"cloud_height":        unit.Meter,
	"laser_temp":          unit.Kelvin,
}

// heightUnits returns the conversion of reported heights to meters and
// the step of sky condition heights in the reported unit.
func heightUnits(word uint64, version float64) (codec.Conversion, float64) {
	if Status.Set(word, version, UnitsMeters) {
		return codec.MetersToMeters, 10
	}
	return codec.FeetToMeters, 100
}

// conversions lists the conversions applied to each data key.
var conversions = map[string][]codec.Conversion{
	"cbh":                 heightConversions,
	"vertical_visibility": heightConversions,
	"highest_signal":      heightConversions,
	"cloud_height":        heightConversions,
	"laser_temp":          {codec.CelsiusToKelvin},
}

var heightConversions = []codec.Conversion{codec.FeetToMeters, codec.MetersToMeters}
