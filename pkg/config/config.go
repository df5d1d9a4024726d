package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the settings shared by the dephoist command surface.
type Config struct {
	Input       string `koanf:"in"`
	Output      string `koanf:"out"`
	Dir         string `koanf:"dir"`
	Dump        bool   `koanf:"dump"`
	Watch       bool   `koanf:"watch"`
	Port        int    `koanf:"port"`
	OpenBrowser bool   `koanf:"open"`
	DoubleRun   bool   `koanf:"double-run"`
	Verbosity   string `koanf:"verbosity"`
}

// Load loads configuration from defaults, config file, environment
// variables, and flags. Priority: Flags > Env > Config File > Defaults.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"in":         "-",
		"out":        "-",
		"dir":        "",
		"dump":       false,
		"watch":      false,
		"port":       8080,
		"open":       true,
		"double-run": false,
		"verbosity":  "",
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional) - dephoist.toml. Missing file is not an error.
	_ = k.Load(file.Provider("dephoist.toml"), toml.Parser())

	// 3. Environment variables, prefix DEPHOIST_ (e.g. DEPHOIST_PORT=9090)
	if err := k.Load(env.Provider("DEPHOIST_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "DEPHOIST_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// mapProvider adapts a plain map to koanf's Provider interface for defaults.
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
