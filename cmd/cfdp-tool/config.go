// SPDX-FileCopyrightText: 2024 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v7"
	log "github.com/sirupsen/logrus"
)

// toolConf describes the TOML-configuration.
type toolConf struct {
	Logging logConf
}

// logConf describes the Logging-configuration block. Environment variables
// take precedence over the configuration file.
type logConf struct {
	Level        string `toml:"level" env:"CFDP_LOG_LEVEL"`
	ReportCaller bool   `toml:"report-caller" env:"CFDP_LOG_REPORT_CALLER"`
	Format       string `toml:"format" env:"CFDP_LOG_FORMAT"`
}

// loadConfig reads an optional configuration file and applies environment overrides.
func loadConfig(filename string) (conf toolConf, err error) {
	if filename != "" {
		if _, err = toml.DecodeFile(filename, &conf); err != nil {
			err = fmt.Errorf("parsing configuration %s: %w", filename, err)
			return
		}
	}

	if err = env.Parse(&conf.Logging); err != nil {
		err = fmt.Errorf("parsing environment: %w", err)
	}
	return
}

// apply this logConf to logrus' standard logger.
func (lc logConf) apply() {
	if lc.Level != "" {
		if lvl, err := log.ParseLevel(lc.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    lc.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(lc.ReportCaller)

	switch lc.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		log.WithField("format", lc.Format).Warn("Unknown logging format")
	}
}
