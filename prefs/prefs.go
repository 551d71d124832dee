// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/memosync/ai"
	"github.com/poiesic/memosync/syncer"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultSyncInterval is the period of the background sync ticker.
	DefaultSyncInterval = 15 * time.Minute

	// DefaultRequestTimeout bounds a single upload request.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultConcurrency is the number of uploads run in parallel.
	DefaultConcurrency = 1
)

// ErrInvalidPreferences is wrapped by every Validate failure.
var ErrInvalidPreferences = errors.New("invalid preferences")

// AISettings controls automatic title generation.
type AISettings struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Model   string `yaml:"model"`
	Token   string `yaml:"token"`
}

// Preferences are the user settings consulted by the sync machinery.
type Preferences struct {
	ServerURL      string             `yaml:"server_url"`
	APIToken       string             `yaml:"api_token"`
	AutoSync       bool               `yaml:"auto_sync"`
	WiFiOnly       bool               `yaml:"wifi_only"`
	SyncInterval   time.Duration      `yaml:"sync_interval"`
	RequestTimeout time.Duration      `yaml:"request_timeout"`
	Concurrency    int                `yaml:"concurrency"`
	Retry          syncer.RetryPolicy `yaml:"retry"`
	AI             AISettings         `yaml:"ai"`
}

// Default returns the preferences used when nothing is configured.
// Sync is enabled on any connection but needs a ServerURL to run.
func Default() *Preferences {
	aiDefaults := ai.DefaultConfig()
	return &Preferences{
		AutoSync:       true,
		SyncInterval:   DefaultSyncInterval,
		RequestTimeout: DefaultRequestTimeout,
		Concurrency:    DefaultConcurrency,
		Retry:          syncer.DefaultRetryPolicy(),
		AI: AISettings{
			Host:  aiDefaults.Host,
			Model: aiDefaults.Model,
		},
	}
}

// Load resolves preferences from defaults, the YAML file at configPath,
// the dotenv file at envPath and the process environment, then validates
// the result. Empty or missing paths are skipped.
func Load(configPath, envPath string) (*Preferences, error) {
	p := Default()

	if err := p.loadFile(configPath); err != nil {
		return nil, err
	}
	if err := loadDotenv(envPath); err != nil {
		return nil, err
	}
	if err := p.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Preferences) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Validate checks that the preferences are usable.
func (p *Preferences) Validate() error {
	if p.ServerURL != "" {
		u, err := url.Parse(p.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: server_url %q must be an absolute http(s) URL", ErrInvalidPreferences, p.ServerURL)
		}
	}
	if p.SyncInterval < 0 {
		return fmt.Errorf("%w: sync_interval cannot be negative", ErrInvalidPreferences)
	}
	if p.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidPreferences)
	}
	if p.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidPreferences, p.Concurrency)
	}
	if err := p.Retry.Validate(); err != nil {
		return fmt.Errorf("%w: retry: %w", ErrInvalidPreferences, err)
	}
	return nil
}

// SyncConfigured reports whether a server endpoint is set.
func (p *Preferences) SyncConfigured() bool {
	return p.ServerURL != ""
}

// SyncAllowed reports whether a sync may run on the given network.
// It gates manual syncs; background syncs also need AutoSync.
func (p *Preferences) SyncAllowed(status NetworkStatus) bool {
	if !p.SyncConfigured() || status == NetworkOffline {
		return false
	}
	return !p.WiFiOnly || status == NetworkWiFi
}

// AutoSyncAllowed reports whether a background sync may run on the given network.
func (p *Preferences) AutoSyncAllowed(status NetworkStatus) bool {
	return p.AutoSync && p.SyncAllowed(status)
}

// AIConfig returns the title generation config, or nil when disabled.
func (p *Preferences) AIConfig() *ai.Config {
	if !p.AI.Enabled {
		return nil
	}
	return ai.NewConfig(
		ai.WithHost(p.AI.Host),
		ai.WithModel(p.AI.Model),
		ai.WithToken(p.AI.Token),
	)
}
