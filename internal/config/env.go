package config

import (
	"fmt"
	"strings"
)

// Validate reports required settings that are missing for the selected store.
func (c Config) Validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	switch c.Store {
	case "mongo":
		if c.MongoURI == "" {
			missing = append(missing, "MONGO_URI")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE must be mongo or memory, got %q", c.Store)
	}
	if len(missing) > 0 {
		return fmt.Errorf("ENV %s is required", strings.Join(missing, ", "))
	}
	return nil
}
