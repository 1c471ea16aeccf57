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
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

var (
	buildTag   = "dev"     // v#.#.#
	buildDate  = "unknown" // date -u '+%Y-%m-%d'
	commitHash = "unknown" // git rev-parse HEAD
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	})
	log.SetReportCaller(true)
}

// SetupLogging applies the configured level and format to the standard
// logger.
func SetupLogging(out io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	switch format {
	case "text":
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format: %q", format)
	}

	log.SetLevel(lvl)
	log.SetOutput(out)

	return nil
}

func main() {
	cfg := NewDefaultConfig()
	if err := cfg.Parse(flag.CommandLine, os.Args[1:], os.Getenv); err != nil {
		log.Fatal(err)
	}

	if cfg.version {
		fmt.Println("Build Tag: ", buildTag)
		fmt.Println("Build Date:", buildDate)
		fmt.Println("Commit:    ", commitHash)
		os.Exit(0)
	}

	if err := SetupLogging(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}

	acq, err := NewAcquisition(cfg)
	if err != nil {
		log.Fatal(err)
	}

	cfg.Log()
	acq.dec.Log()

	res, err := acq.Run()
	if err != nil {
		if stageErr, ok := err.(*StageError); ok {
			log.WithFields(stageErr.Fields()).Fatal(stageErr.Err)
		}
		log.Fatal(err)
	}

	log.WithFields(log.Fields{
		"collected_time_points": res.Stats.Frames,
		"rate_hz":               res.SampleRate(),
	}).Info("approximate collection rate")

	log.WithFields(log.Fields{
		"output":  cfg.Output,
		"elapsed": res.TotalTime,
	}).Info("saved")
}
