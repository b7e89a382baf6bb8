package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerLocation associates a report directory with the server it came from.
// The set of locations is loaded once at startup and passed to the ingester;
// nothing mutates it afterwards.
type ServerLocation struct {
	Directory string `yaml:"directory"`
	ServerID  uint   `yaml:"server_id"`
}

// ServerLocationNotFoundError is returned when a server filter matches no
// configured location.
type ServerLocationNotFoundError struct {
	Server string
}

func (e *ServerLocationNotFoundError) Error() string {
	return fmt.Sprintf("no report location found for server: %s", e.Server)
}

// LoadServerLocations reads the YAML locations file. Each entry maps a
// directory of report files to a server id.
func LoadServerLocations(path string) ([]ServerLocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read locations file %s: %w", path, err)
	}

	var locations []ServerLocation
	if err := yaml.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse locations file %s: %w", path, err)
	}

	for _, loc := range locations {
		if loc.Directory == "" || loc.ServerID == 0 {
			return nil, fmt.Errorf("invalid location entry in %s: directory and server_id are required", path)
		}
	}

	return locations, nil
}

// FilterLocations returns the locations whose directory contains the given
// server string. An empty filter returns all locations.
func FilterLocations(locations []ServerLocation, server string) ([]ServerLocation, error) {
	if server == "" {
		return locations, nil
	}

	var matched []ServerLocation
	for _, loc := range locations {
		if strings.Contains(loc.Directory, server) {
			matched = append(matched, loc)
		}
	}
	if len(matched) == 0 {
		return nil, &ServerLocationNotFoundError{Server: server}
	}
	return matched, nil
}
