package config

import (
	"fmt"
	"os"

	"github.com/Conceptual-Machines/metrome-api/internal/click"
	"gopkg.in/yaml.v3"
)

// LoadRenderProfile reads a YAML click-track profile. Fields left out of the
// file keep the values of click.DefaultProfile.
//
//	sample_rate: 48000
//	strong: {frequency_hz: 2000, length_ms: 40, amplitude: 0.9}
//	weak:   {frequency_hz: 1000, length_ms: 30, amplitude: 0.5}
func LoadRenderProfile(path string) (click.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return click.Profile{}, fmt.Errorf("read render profile: %w", err)
	}
	return ParseRenderProfile(data)
}

// ParseRenderProfile decodes and validates a YAML profile document
func ParseRenderProfile(data []byte) (click.Profile, error) {
	profile := click.DefaultProfile()
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return click.Profile{}, fmt.Errorf("parse render profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return click.Profile{}, fmt.Errorf("invalid render profile: %w", err)
	}
	return profile, nil
}
