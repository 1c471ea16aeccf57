// EEGACQ - Acquires and decodes EEG headset captures over a serial link.
// Copyright (C) 2014 The eegacq Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/bemasher/eegacq/decode"
	"github.com/bemasher/eegacq/transport"
)

// Config holds everything a single acquisition run needs. It is built once
// at startup and not modified afterwards.
type Config struct {
	TimePoints int    `yaml:"timepoints"`
	Output     string `yaml:"output"`
	SampleFile string `yaml:"samplefile"`
	Input      string `yaml:"input"`
	Simulate   bool   `yaml:"simulate"`

	Serial transport.Config `yaml:"serial"`

	LogLevel  string `yaml:"loglevel"`
	LogFormat string `yaml:"logformat"`

	// Frame layout is fixed by the headset firmware.
	Frame decode.FrameConfig `yaml:"-"`

	configFile string
	version    bool
}

func NewDefaultConfig() Config {
	return Config{
		TimePoints: 30,
		Output:     "data.csv",
		SampleFile: os.DevNull,
		Serial:     transport.DefaultConfig(),
		LogLevel:   "info",
		LogFormat:  "text",
		Frame:      decode.DefaultFrameConfig(),
	}
}

// Bytes is the number of bytes requested from the source.
func (c Config) Bytes() int {
	return c.TimePoints * c.Frame.FrameLength
}

func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "yaml file providing defaults for any of these flags")
	fs.IntVar(&c.TimePoints, "timepoints", c.TimePoints, "number of time points to sample")
	fs.StringVar(&c.Output, "output", c.Output, "csv file to write decoded microvolt readings to")
	fs.StringVar(&c.SampleFile, "samplefile", c.SampleFile, "raw byte dump file, replay with -input")
	fs.StringVar(&c.Input, "input", c.Input, "decode a raw dump instead of reading the serial port")
	fs.BoolVar(&c.Simulate, "simulate", c.Simulate, "decode generated frames instead of reading the serial port")

	fs.StringVar(&c.Serial.Port, "port", c.Serial.Port, "serial port the headset is paired on")
	fs.IntVar(&c.Serial.Baud, "baud", c.Serial.Baud, "serial baud rate")
	fs.DurationVar(&c.Serial.Timeout, "timeout", c.Serial.Timeout, "read timeout, a capture not complete by then fails")
	fs.IntVar(&c.Serial.BlockSize, "blocksize", c.Serial.BlockSize, "maximum bytes requested per read")

	fs.StringVar(&c.LogLevel, "loglevel", c.LogLevel, "log level: debug, info, warning or error")
	fs.StringVar(&c.LogFormat, "logformat", c.LogFormat, "log format: text or json")
	fs.BoolVar(&c.version, "version", false, "display build date and commit hash")
}

// EnvOverride sets any flag which has a matching EEGACQ_ environment
// variable, command-line values still take precedence.
func EnvOverride(fs *flag.FlagSet, getenv func(string) string) {
	fs.VisitAll(func(f *flag.Flag) {
		envName := "EEGACQ_" + strings.ToUpper(f.Name)
		flagValue := getenv(envName)
		if flagValue != "" {
			if err := fs.Set(f.Name, flagValue); err != nil {
				log.Warnf(
					"Environment variable %q failed to override flag %q with value %q: %q",
					envName, f.Name, flagValue, err,
				)
			} else {
				log.Infof("Environment variable %q overrides flag %q with %q", envName, f.Name, flagValue)
			}
		}
	})
}

// Load reads a yaml config file over the current values.
func (c *Config) Load(filename string) error {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, c)
}

// Parse resolves the configuration from defaults, an optional yaml file,
// environment variables and args, in increasing order of precedence.
func (c *Config) Parse(fs *flag.FlagSet, args []string, getenv func(string) string) error {
	c.RegisterFlags(fs)
	EnvOverride(fs, getenv)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.configFile != "" {
		// Remember what was given explicitly so the file can't clobber it.
		explicit := map[string]string{}
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})

		if err := c.Load(c.configFile); err != nil {
			return errors.Wrapf(err, "load config %s", c.configFile)
		}

		for name, value := range explicit {
			if err := fs.Set(name, value); err != nil {
				return err
			}
		}
	}

	return c.Validate()
}

func (c Config) Validate() error {
	if c.TimePoints < 1 {
		return fmt.Errorf("timepoints must be positive: %d", c.TimePoints)
	}
	if c.Output == "" {
		return errors.New("output file required")
	}
	if c.Input != "" && c.Simulate {
		return errors.New("-input and -simulate are mutually exclusive")
	}
	if c.Serial.Baud < 1 {
		return fmt.Errorf("invalid baud rate: %d", c.Serial.Baud)
	}
	if c.Serial.Timeout < 0 || c.Serial.BlockSize < 0 {
		return fmt.Errorf("invalid serial config: %s", c.Serial)
	}
	return c.Frame.Validate()
}

func (c Config) Log() {
	log.WithFields(log.Fields{
		"TimePoints": c.TimePoints,
		"Bytes":      c.Bytes(),
		"Output":     c.Output,
		"SampleFile": c.SampleFile,
	}).Info("acquisition")

	switch {
	case c.Input != "":
		log.WithField("Input", c.Input).Info("replaying")
	case c.Simulate:
		log.Info("simulating")
	default:
		log.WithField("Serial", c.Serial).Info("serial")
	}
}
