package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type User struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Active bool   `yaml:"active"`
}

type CounterConfig struct {
	Clicks   uint64        `yaml:"clicks"`
	Duration time.Duration `yaml:"duration"`
	Tick     time.Duration `yaml:"tick"`
}

type BenchConfig struct {
	Widths     []int `yaml:"widths"`
	Heights    []int `yaml:"heights"`
	Iterations int   `yaml:"iterations"`
}

type Config struct {
	Counter CounterConfig `yaml:"counter"`
	Users   []User        `yaml:"users"`
	Bench   BenchConfig   `yaml:"bench"`
}

func defaultConfig() Config {
	return Config{
		Counter: CounterConfig{
			Clicks:   3,
			Duration: 3 * time.Second,
			Tick:     time.Second,
		},
		Users: []User{
			{ID: 1, Name: "Nirav", Role: "Staff iOS Engineer", Active: true},
			{ID: 2, Name: "Alex", Role: "Frontend Engineer", Active: false},
			{ID: 3, Name: "Sam", Role: "React Native Developer", Active: true},
		},
		Bench: BenchConfig{
			Widths:     []int{1, 10, 100},
			Heights:    []int{1, 10, 100},
			Iterations: 100,
		},
	}
}

// loadConfig overlays the YAML file, if any, on the defaults.
func loadConfig(path string) (Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	if config.Counter.Tick <= 0 {
		return Config{}, fmt.Errorf("counter tick must be positive, got %v", config.Counter.Tick)
	}

	return config, nil
}
