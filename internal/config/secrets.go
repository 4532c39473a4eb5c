package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads a secret value using the *_FILE convention.
// If envName+"_FILE" is set, reads the secret from that file path.
// Otherwise falls back to the value of envName.
// Returns empty string if neither is set.
func ResolveSecret(envName string) (string, error) {
	fileEnv := envName + "_FILE"
	if filePath := os.Getenv(fileEnv); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read secret from %s=%s: %w", fileEnv, filePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return os.Getenv(envName), nil
}
