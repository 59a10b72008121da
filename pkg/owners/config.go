package owners

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidConfig is returned when an ownership file can't be decoded.
var ErrInvalidConfig = errors.New("invalid ownership config")

// Config is the content of an ownership file ("codeowners.json"):
// path prefixes mapped to teams, team memberships, and GitLab user IDs.
type Config struct {
	Paths Paths  `json:"paths"`
	Teams []Team `json:"teams"`
	Users []User `json:"users"`
}

// Paths is an ordered list of path patterns and their owning teams.
// The order is the same as in the JSON file, because when multiple
// patterns match the same file path, the first one wins.
type Paths []PathOwners

type PathOwners struct {
	Pattern string
	Teams   []string
}

type Team struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Members     []string `json:"team"`
}

type User struct {
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	GitLabID int    `json:"gitlab_id"`
}

// Parse decodes the JSON content of an ownership file.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

// ReadFile reads and decodes a local ownership file.
func ReadFile(path string) (Config, error) {
	f, err := os.Open(path) //gosec:disable G304 // Specified by the user by design.
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Config{}, err
	}

	return Parse(data)
}

// UnmarshalJSON decodes a JSON object while preserving the order of its keys.
func (p *Paths) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))

	t, err := d.Token()
	if err != nil {
		return err
	}
	if t == nil {
		*p = nil
		return nil
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for paths, got %v", t)
	}

	var paths Paths
	for d.More() {
		t, err := d.Token()
		if err != nil {
			return err
		}
		pattern, ok := t.(string)
		if !ok {
			return fmt.Errorf("unexpected key in paths: %v", t)
		}

		var teams []string
		if err := d.Decode(&teams); err != nil {
			return fmt.Errorf("invalid teams for path %q: %w", pattern, err)
		}

		paths = append(paths, PathOwners{Pattern: pattern, Teams: teams})
	}

	if _, err := d.Token(); err != nil { // Closing '}'.
		return err
	}

	*p = paths
	return nil
}

// MarshalJSON encodes the paths as a JSON object, in their original order.
func (p Paths) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, po := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(po.Pattern)
		if err != nil {
			return nil, err
		}
		teams := po.Teams
		if teams == nil {
			teams = []string{}
		}
		v, err := json.Marshal(teams)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
