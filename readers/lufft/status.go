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

package lufft

import "github.com/ACTRIS-CCRES/raw2l1-sub000/codec"

// Status is the table of the error_ext bits. Firmware up to 0.7 reports
// the lower 32 bits only.
var Status = codec.StatusTable{
	{Mask: 1 << 0, Severity: codec.Alarm, Msg: "Signal quality too low"},
	{Mask: 1 << 1, Severity: codec.Alarm, Msg: "Signal recording error"},
	{Mask: 1 << 2, Severity: codec.Alarm, Msg: "Laser power supply failure"},
	{Mask: 1 << 3, Severity: codec.Alarm, Msg: "Detector high voltage failure"},
	{Mask: 1 << 4, Severity: codec.Alarm, Msg: "Laser temperature out of range"},
	{Mask: 1 << 5, Severity: codec.Alarm, Msg: "Laser pulse energy too low"},
	{Mask: 1 << 6, Severity: codec.Alarm, Msg: "Laser optical unit failure"},
	{Mask: 1 << 8, Severity: codec.Alarm, Msg: "Memory access error"},

	{Mask: 1 << 12, Severity: codec.Warning, Msg: "Window contaminated"},
	{Mask: 1 << 13, Severity: codec.Warning, Msg: "Internal temperature out of range"},
	{Mask: 1 << 14, Severity: codec.Warning, Msg: "External temperature out of range"},
	{Mask: 1 << 15, Severity: codec.Warning, Msg: "Detector temperature out of range"},
	{Mask: 1 << 16, Severity: codec.Warning, Msg: "Blower failure"},
	{Mask: 1 << 17, Severity: codec.Warning, Msg: "Heater failure"},
	{Mask: 1 << 18, Severity: codec.Warning, Msg: "Laser lifetime exceeded"},
	{Mask: 1 << 19, Severity: codec.Warning, Msg: "Clock not synchronized"},

	{Mask: 1 << 24, Severity: codec.Info, Msg: "Standby mode is on"},
	{Mask: 1 << 25, Severity: codec.Info, Msg: "Heater is on"},
	{Mask: 1 << 26, Severity: codec.Info, Msg: "Blower is on"},

	{Mask: 1 << 32, Severity: codec.Warning, Msg: "Detector sensitivity reduced", MinVersion: 0.71},
	{Mask: 1 << 33, Severity: codec.Warning, Msg: "Tilt angle out of range", MinVersion: 0.71},
	{Mask: 1 << 40, Severity: codec.Info, Msg: "Service interval reached", MinVersion: 0.71},
}
