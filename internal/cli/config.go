package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string
	Verbose     bool
}

// Session remembers the room and player from the last create or join
type Session struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("RMCS_SERVER", "http://localhost:8080"),
		SessionFile: getEnvOrDefault("RMCS_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSession reads the session file. A missing file yields an empty session.
func (c *Config) LoadSession() (Session, error) {
	var s Session

	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return s, errors.New("corrupt session file " + c.SessionFile)
	}
	return s, nil
}

// SaveSession writes the session file
func (c *Config) SaveSession(s Session) error {
	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rmcs/session.json"
	}
	return filepath.Join(home, ".rmcs", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
