// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package config loads the YAML document cmd/ecusim reads at startup:
// which CAN channel to bind, the ISO-TP address pair, and how to log.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CANConfig selects the physical or virtual CAN link.
type CANConfig struct {
	Channel string `yaml:"channel"`
	Bitrate int    `yaml:"bitrate"`
	RxID    uint32 `yaml:"rxid"`
	TxID    uint32 `yaml:"txid"`
}

// LoggingConfig controls the simulator's log/slog output: level and
// destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

// MetricsConfig controls the Prometheus HTTP listener.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the full document cmd/ecusim loads via --config.
type Config struct {
	CAN     CANConfig     `yaml:"can"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Default returns the simulator's out-of-the-box configuration: can0 at
// 500 kbit/s, the 0x7E0/0x7E8 normal-addressing pair, info-level logging
// to stdout, and the metrics listener on :9110.
func Default() Config {
	return Config{
		CAN: CANConfig{
			Channel: "can0",
			Bitrate: 500000,
			RxID:    0x7E0,
			TxID:    0x7E8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Addr: ":9110",
		},
	}
}

// Valid fills in the default for any unset field, erroring only on a
// value that cannot be defaulted and is out of range.
func (c *Config) Valid() error {
	if c == nil {
		return fmt.Errorf("config: nil config")
	}
	def := Default()
	if c.CAN.Channel == "" {
		c.CAN.Channel = def.CAN.Channel
	}
	if c.CAN.Bitrate == 0 {
		c.CAN.Bitrate = def.CAN.Bitrate
	} else if c.CAN.Bitrate < 0 {
		return fmt.Errorf("config: can.bitrate must be positive, got %d", c.CAN.Bitrate)
	}
	if c.CAN.RxID == 0 {
		c.CAN.RxID = def.CAN.RxID
	}
	if c.CAN.TxID == 0 {
		c.CAN.TxID = def.CAN.TxID
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = def.Metrics.Addr
	}
	return nil
}

// Load reads and parses the YAML document at path, applying defaults for
// any field the file leaves unset. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Valid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
