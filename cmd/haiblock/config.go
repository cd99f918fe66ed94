package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	haiblock "github.com/haiblock/gosdk"
)

const defaultTimeout = 30 * time.Second

// profile is the on-disk YAML configuration selected with --config.
type profile struct {
	APIURL    string        `yaml:"api_url"`
	AuthToken string        `yaml:"auth_token"`
	Timeout   time.Duration `yaml:"timeout"`
}

// loadProfile reads a YAML profile. An empty path yields an empty profile.
func loadProfile(path string) (profile, error) {
	if path == "" {
		return profile{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return profile{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return profile{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if p.Timeout < 0 {
		return profile{}, fmt.Errorf("parsing config %s: timeout must not be negative", path)
	}
	return p, nil
}

// settings are the resolved connection parameters.
type settings struct {
	APIURL    string
	AuthToken string
	Timeout   time.Duration
}

// resolveSettings picks each value from the flags, then the environment, then the profile.
// An empty APIURL is left for the SDK to default.
func resolveSettings(flags settings, getenv func(string) string, p profile) settings {
	s := settings{
		APIURL:    firstSet(flags.APIURL, getenv(haiblock.EnvAPIURL), p.APIURL),
		AuthToken: firstSet(flags.AuthToken, getenv(haiblock.EnvAuthToken), p.AuthToken),
		Timeout:   flags.Timeout,
	}
	if s.Timeout <= 0 {
		s.Timeout = p.Timeout
	}
	if s.Timeout <= 0 {
		s.Timeout = defaultTimeout
	}
	return s
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
