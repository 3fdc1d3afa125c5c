// Package config loads the description of a neuronbridge run from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/neuronbridge/model"
	"github.com/sarchlab/neuronbridge/simulation"
	"github.com/sarchlab/neuronbridge/storage"
)

// The environment variables that override the file.
const (
	EnvWorkers = "NEURONBRIDGE_WORKERS"
	EnvDB      = "NEURONBRIDGE_DB"
	EnvLog     = "NEURONBRIDGE_LOG"
)

// Config describes a run.
type Config struct {
	// DB is the SQLite file holding the network.
	DB string `yaml:"db"`

	// Network is the network written by the generate command.
	Network storage.NetworkSpec `yaml:"network"`

	// Seed seeds the network generation.
	Seed int64 `yaml:"seed"`

	// Workers is the number of engine ranks.
	Workers int `yaml:"workers"`

	// Log is the logrus level name.
	Log string `yaml:"log"`

	// Record names the SQLite file the run is recorded to, without its
	// .sqlite3 extension. Nothing is recorded when empty.
	Record string `yaml:"record"`

	Monitor     MonitorConfig      `yaml:"monitor"`
	Simulations []SimulationConfig `yaml:"simulations"`
}

// MonitorConfig configures the monitoring server.
type MonitorConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// SimulationConfig describes a simulation and its models.
type SimulationConfig struct {
	Name        string  `yaml:"name"`
	Duration    float64 `yaml:"duration"`
	Resolution  float64 `yaml:"resolution"`
	Temperature float64 `yaml:"temperature"`

	CellModels       []CellModelConfig       `yaml:"cell_models"`
	ConnectionModels []ConnectionModelConfig `yaml:"connection_models"`
	Devices          []DeviceConfig          `yaml:"devices"`
}

// CellModelConfig describes a point cell model.
type CellModelConfig struct {
	Name       string             `yaml:"name"`
	CellType   string             `yaml:"cell_type"`
	Parameters map[string]float64 `yaml:"parameters"`
}

// ConnectionModelConfig describes a transceiver. Zero values keep the model
// defaults.
type ConnectionModelConfig struct {
	Name    string  `yaml:"name"`
	Synapse string  `yaml:"synapse"`
	Weight  float64 `yaml:"weight"`
	Delay   float64 `yaml:"delay"`
}

// The device kinds.
const (
	DeviceClock        = "clock"
	DeviceTransmitters = "transmitters"
)

// DeviceConfig describes a device.
type DeviceConfig struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	CellTypes []string `yaml:"cell_types"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DB:      "network.sqlite",
		Seed:    1,
		Workers: 1,
		Log:     "info",
	}
}

// Load reads the file at path on top of the defaults, applies the
// environment overrides and validates the result. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnvFile loads the variables of a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// ApplyEnv overrides the configuration with the environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}

		c.Workers = n
	}

	if v, ok := os.LookupEnv(EnvDB); ok {
		c.DB = v
	}

	if v, ok := os.LookupEnv(EnvLog); ok {
		c.Log = v
	}

	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}

	if c.DB == "" {
		return errors.New("db is required")
	}

	if _, err := logrus.ParseLevel(c.Log); err != nil {
		return err
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		return fmt.Errorf("monitor port %d out of range", c.Monitor.Port)
	}

	names := make(map[string]bool)
	for i, s := range c.Simulations {
		if err := s.validate(); err != nil {
			return fmt.Errorf("simulations[%d]: %w", i, err)
		}

		if names[s.Name] {
			return fmt.Errorf("simulation %q defined twice", s.Name)
		}

		names[s.Name] = true
	}

	return nil
}

func (s *SimulationConfig) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}

	if s.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %g", s.Duration)
	}

	if s.Resolution < 0 {
		return fmt.Errorf("resolution must be positive, got %g", s.Resolution)
	}

	cellTypes := make(map[string]bool)
	for _, m := range s.CellModels {
		if m.Name == "" || m.CellType == "" {
			return errors.New("cell models need a name and a cell type")
		}

		if cellTypes[m.CellType] {
			return fmt.Errorf("cell type %q modelled twice", m.CellType)
		}

		cellTypes[m.CellType] = true
	}

	for _, m := range s.ConnectionModels {
		if m.Name == "" {
			return errors.New("connection models need a name")
		}
	}

	for _, d := range s.Devices {
		switch d.Kind {
		case DeviceClock, DeviceTransmitters:
		default:
			return fmt.Errorf("device %q: unknown kind %q; valid: clock, transmitters",
				d.Name, d.Kind)
		}
	}

	return nil
}

// Build creates the simulation on the network stored in s.
func (s *SimulationConfig) Build(st storage.Storage) *simulation.Simulation {
	b := simulation.MakeBuilder().
		WithName(s.Name).
		WithStorage(st)

	if s.Duration > 0 {
		b = b.WithDuration(s.Duration)
	}

	if s.Resolution > 0 {
		b = b.WithResolution(s.Resolution)
	}

	if s.Temperature != 0 {
		b = b.WithTemperature(s.Temperature)
	}

	for _, m := range s.CellModels {
		cm := model.NewPointCellModel(m.Name, m.CellType)
		for name, v := range m.Parameters {
			cm = cm.WithParameter(name, v)
		}

		b = b.WithCellModel(cm)
	}

	for _, m := range s.ConnectionModels {
		t := model.NewTransceiver(m.Name)
		if m.Synapse != "" {
			t = t.WithSynapse(m.Synapse)
		}

		if m.Weight != 0 {
			t = t.WithWeight(m.Weight)
		}

		if m.Delay != 0 {
			t = t.WithDelay(m.Delay)
		}

		b = b.WithConnectionModel(t)
	}

	for _, d := range s.Devices {
		switch d.Kind {
		case DeviceClock:
			b = b.WithDevice(model.NewClockRecorder(d.Name))
		case DeviceTransmitters:
			b = b.WithDevice(model.NewTransmitterRecorder(d.Name, d.CellTypes...))
		}
	}

	return b.Build()
}

// Simulation returns the simulation named name.
func (c *Config) Simulation(name string) (*SimulationConfig, bool) {
	for i := range c.Simulations {
		if c.Simulations[i].Name == name {
			return &c.Simulations[i], true
		}
	}

	return nil, false
}
