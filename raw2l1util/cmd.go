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

package raw2l1util

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ACTRIS-CCRES/raw2l1-sub000"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	// Register the instrument readers.
	_ "github.com/ACTRIS-CCRES/raw2l1-sub000/readers/campbell"
	_ "github.com/ACTRIS-CCRES/raw2l1-sub000/readers/lufft"
	_ "github.com/ACTRIS-CCRES/raw2l1-sub000/readers/rpg"
	_ "github.com/ACTRIS-CCRES/raw2l1-sub000/readers/vaisala"
)

// DateLayout is the layout of the processing date argument.
const DateLayout = "20060102"

// Cfg holds the tool options.
var Cfg *viper.Viper

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	// Options are the tool options. The instrument and netCDF layout are
	// described by the configuration file given to run.
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the location of a file holding tool
              options. It is not the instrument configuration file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level is the lowest level of the messages written to
              standard error: debug, info, warning or error.`,
			shorthand:  "l",
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_dir",
			usage: `
              log_dir is the directory of the daily log files. No log
              file is written if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_file_level",
			usage: `
              log_file_level is the lowest level of the messages written
              to the daily log files.`,
			defaultVal: "debug",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ancillary",
			usage: `
              ancillary lists ancillary files, such as auxiliary
              meteorological files, handed to the reader.`,
			shorthand:  "a",
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "overlap_file",
			usage: `
              overlap_file overrides the overlap_file option of the
              configuration file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "check_timeliness",
			usage: `
              check_timeliness forces the timeliness check of the decoded
              data regardless of the configuration file.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RAW2L1")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(readersCmd)
}

// setConfig finds and reads in the tool option file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return raw2l1.Errorf(raw2l1.ErrConfigRead, "problem reading option file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "raw2l1",
	Short: "Convert raw lidar, ceilometer and radiometer files to netCDF.",
	Long: `raw2l1 reads the raw files written by an instrument during one day and
writes them as a single netCDF file whose layout is described by an
instrument configuration file.

Tool options can be given as command-line flags, in an option file (see
--config) or as environment variables in the format 'RAW2L1_var' where 'var'
is the name of the option.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of raw2l1.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("raw2l1 v%s\n", raw2l1.Version)
	},
	DisableAutoGenTag: true,
}

var readersCmd = &cobra.Command{
	Use:   "readers",
	Short: "List the available readers",
	Long:  "readers prints the names accepted by the reader option of the configuration file.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(strings.Join(raw2l1.Readers(), "\n"))
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run DATE CONF OUTPUT INPUT...",
	Short: "Convert the raw files of one day.",
	Long: `run decodes the INPUT files, which may be glob patterns, with the reader
named in the configuration file CONF, and writes the netCDF file OUTPUT.
DATE is the processing day, in the format YYYYMMDD.`,
	Args: cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := time.Parse(DateLayout, args[0])
		if err != nil {
			return raw2l1.Errorf(raw2l1.ErrConfigValue, "date %q: want YYYYMMDD", args[0])
		}
		log, err := NewLogger(cmd.OutOrStderr(), Cfg.GetString("log_level"),
			Cfg.GetString("log_dir"), Cfg.GetString("log_file_level"))
		if err != nil {
			return err
		}
		err = Run(RunOptions{
			Date:            date,
			ConfPath:        args[1],
			Output:          args[2],
			Inputs:          args[3:],
			Ancillary:       expandStringSlice(Cfg.GetStringSlice("ancillary")),
			OverlapFile:     os.ExpandEnv(Cfg.GetString("overlap_file")),
			CheckTimeliness: Cfg.GetBool("check_timeliness"),
			Log:             log,
		})
		if err != nil {
			log.WithField("exit", raw2l1.ExitCode(err)).Error(err)
			return logged{err}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// logged is an error already written to the log.
type logged struct{ error }

func (l logged) Unwrap() error { return l.error }

// Execute runs Root with args and returns the process exit status.
func Execute(args []string) int {
	Root.SetArgs(args)
	if err := Root.Execute(); err != nil {
		if !errors.As(err, new(logged)) {
			fmt.Fprintln(Root.OutOrStderr(), err)
		}
		return raw2l1.ExitCode(err)
	}
	return raw2l1.ExitOK
}
