package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DefaultServerName is used for the server built from top-level base_url
// and token settings.
const DefaultServerName = "default"

// Server holds the connection settings for one contents server. TokenEnv
// names an environment variable to read the token from.
type Server struct {
	Name     string        `mapstructure:"name"`
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	TokenEnv string        `mapstructure:"token_env"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ResolvedToken returns Token, or the value of TokenEnv when Token is empty.
func (s Server) ResolvedToken() string {
	if s.Token != "" {
		return s.Token
	}
	if s.TokenEnv != "" {
		return os.Getenv(s.TokenEnv)
	}
	return ""
}

// DecodeServers decodes the `servers` list of the config file.
func DecodeServers(raw interface{}) ([]Server, error) {
	if raw == nil {
		return []Server{}, nil
	}

	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("servers config is not a list")
	}

	var servers []Server
	seen := make(map[string]bool)
	for i, entry := range entries {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("servers entry %d is not a map", i)
		}

		var s Server
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
			Result:     &s,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(m); err != nil {
			return nil, fmt.Errorf("failed to decode servers entry %d: %w", i, err)
		}

		if s.Name == "" {
			return nil, fmt.Errorf("servers entry %d missing 'name' field", i)
		}
		if s.BaseURL == "" {
			return nil, fmt.Errorf("server '%s' missing 'base_url' field", s.Name)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("server '%s' is defined more than once", s.Name)
		}
		seen[s.Name] = true
		servers = append(servers, s)
	}
	return servers, nil
}

// Select picks the server called name. An empty name selects fallback when
// it has a base URL, otherwise the only configured server.
func Select(servers []Server, name string, fallback Server) (Server, error) {
	if name != "" {
		for _, s := range servers {
			if s.Name == name {
				return s, nil
			}
		}
		if fallback.BaseURL != "" && name == fallback.Name {
			return fallback, nil
		}
		return Server{}, fmt.Errorf("no server named '%s' (known: %s)", name, knownNames(servers))
	}

	if fallback.BaseURL != "" {
		if fallback.Name == "" {
			fallback.Name = DefaultServerName
		}
		return fallback, nil
	}
	switch len(servers) {
	case 0:
		return Server{}, fmt.Errorf("no server configured: set base_url in the config file or JX_BASE_URL")
	case 1:
		return servers[0], nil
	default:
		return Server{}, fmt.Errorf("several servers configured, choose one with --server (known: %s)", knownNames(servers))
	}
}

func knownNames(servers []Server) string {
	if len(servers) == 0 {
		return "none"
	}
	names := make([]string, len(servers))
	for i, s := range servers {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
