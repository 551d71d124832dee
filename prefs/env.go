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
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnvOverrides.
const EnvPrefix = "MEMOSYNC_"

// ApplyEnvOverrides applies MEMOSYNC_* environment variables.
// Unset or empty variables leave the current value alone.
func (p *Preferences) ApplyEnvOverrides() error {
	setString("SERVER_URL", &p.ServerURL)
	setString("API_TOKEN", &p.APIToken)
	setString("AI_HOST", &p.AI.Host)
	setString("AI_MODEL", &p.AI.Model)
	setString("AI_TOKEN", &p.AI.Token)

	for name, dst := range map[string]*bool{
		"AUTO_SYNC":  &p.AutoSync,
		"WIFI_ONLY":  &p.WiFiOnly,
		"AI_ENABLED": &p.AI.Enabled,
	} {
		if err := setBool(name, dst); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*time.Duration{
		"SYNC_INTERVAL":    &p.SyncInterval,
		"REQUEST_TIMEOUT":  &p.RequestTimeout,
		"RETRY_BASE_DELAY": &p.Retry.BaseDelay,
		"RETRY_MAX_DELAY":  &p.Retry.MaxDelay,
	} {
		if err := setDuration(name, dst); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*int{
		"CONCURRENCY": &p.Concurrency,
		"MAX_RETRIES": &p.Retry.MaxRetries,
	} {
		if err := setInt(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func lookup(name string) (string, bool) {
	val := os.Getenv(EnvPrefix + name)
	return val, val != ""
}

func setString(name string, dst *string) {
	if val, ok := lookup(name); ok {
		*dst = val
	}
}

func setBool(name string, dst *bool) error {
	val, ok := lookup(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("%w: %s%s: %w", ErrInvalidPreferences, EnvPrefix, name, err)
	}
	*dst = b
	return nil
}

func setDuration(name string, dst *time.Duration) error {
	val, ok := lookup(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("%w: %s%s: %w", ErrInvalidPreferences, EnvPrefix, name, err)
	}
	*dst = d
	return nil
}

func setInt(name string, dst *int) error {
	val, ok := lookup(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%w: %s%s: %w", ErrInvalidPreferences, EnvPrefix, name, err)
	}
	*dst = n
	return nil
}
