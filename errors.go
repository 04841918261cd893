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
	"errors"
	"fmt"
)

// Code is a stable numeric error identifier. Codes are printed as a prefix
// of every operational message so that log scrapers can classify failures
// without parsing free text.
type Code int

// Error code catalog.
const (
	// Configuration errors.
	ErrConfigRead    Code = 100 // configuration file cannot be read or parsed
	ErrConfigMissing Code = 110 // required section or option missing
	ErrConfigValue   Code = 120 // option has an invalid value
	ErrCompression   Code = 130 // invalid netCDF4 compression level
	ErrConfigSection Code = 140 // section does not match the variable/dimension model

	// Reader dispatch errors.
	ErrReaderNotFound   Code = 200 // no reader registered under the configured name
	ErrReaderEntryPoint Code = 210 // registered reader lacks its entry point

	// Input availability errors.
	ErrNoInput      Code = 300 // no file could be read for the whole run
	ErrFileSkipped  Code = 310 // one input file could not be opened
	ErrNoInputMatch Code = 320 // an input pattern matched nothing

	// Format and decoding errors.
	ErrMessageType    Code = 400 // unrecognized or changed message type
	ErrMalformed      Code = 410 // malformed record or profile token
	ErrDimMismatch    Code = 420 // range/channel dimension differs between files
	ErrFirmware       Code = 430 // unrecognized firmware version
	ErrNoTimeSteps    Code = 440 // zero time steps found in the file set
	ErrStatusSummary  Code = 450 // instrument status summary (informational)
	ErrAncillaryInput Code = 460 // ancillary file cannot be used
	ErrUnitMismatch   Code = 470 // unit conversion yields unexpected dimensions

	// Output construction errors.
	ErrMissingKey     Code = 500 // configuration references a missing data key
	ErrStringClassic  Code = 510 // variable type not representable in classic format
	ErrWrite          Code = 520 // output file cannot be written
	ErrValueConvert   Code = 530 // value cannot be converted to the declared type
	ErrCompressionOff Code = 540 // compression requested but not available

	// Timeliness errors.
	ErrTooOld    Code = 600 // newest data older than allowed
	ErrInFuture  Code = 610 // data timestamp in the future
	ErrTimestamp Code = 620 // no valid timestamp to check
)

// Process exit statuses.
const (
	ExitOK         = 0
	ExitFatal      = 1
	ExitTimeliness = 2
)

// Error is an error carrying a catalog code.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("E%03d: %v", int(e.Code), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf returns a new *Error with the given code and formatted message.
func Errorf(code Code, format string, a ...interface{}) error {
	return &Error{Code: code, Err: fmt.Errorf(format, a...)}
}

// Msg formats a log message with the code prefix.
func (c Code) Msg(format string, a ...interface{}) string {
	return fmt.Sprintf("E%03d: ", int(c)) + fmt.Sprintf(format, a...)
}

// CodeOf returns the catalog code of err, or 0 if err does not carry one.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case ErrTooOld, ErrInFuture, ErrTimestamp:
		return ExitTimeliness
	}
	return ExitFatal
}
