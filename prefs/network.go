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
	"strings"
)

// NetworkStatus describes the connectivity available when a sync is requested.
type NetworkStatus int

const (
	// NetworkOffline means no connectivity.
	NetworkOffline NetworkStatus = iota
	// NetworkMetered means a metered connection such as cellular data.
	NetworkMetered
	// NetworkWiFi means an unmetered connection.
	NetworkWiFi
)

func (s NetworkStatus) String() string {
	switch s {
	case NetworkOffline:
		return "offline"
	case NetworkMetered:
		return "metered"
	case NetworkWiFi:
		return "wifi"
	default:
		return fmt.Sprintf("NetworkStatus(%d)", int(s))
	}
}

// ParseNetworkStatus parses the names returned by String.
// "cellular" is accepted as an alias for metered.
func ParseNetworkStatus(s string) (NetworkStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "offline", "none":
		return NetworkOffline, nil
	case "metered", "cellular":
		return NetworkMetered, nil
	case "wifi", "wi-fi", "unmetered", "":
		return NetworkWiFi, nil
	default:
		return NetworkOffline, fmt.Errorf("unknown network status %q", s)
	}
}
