package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where a secret value comes from. A secret file wins over
// an inline value; an explicit File path wins over the EnvFile variable.
type Source struct {
	// Name is used in error messages.
	Name string
	// Value is an inline secret from configuration or flags.
	Value string
	// File points to a file containing the secret.
	File string
	// EnvFile names an environment variable holding the path to the secret
	// file. It is consulted only when File is empty.
	EnvFile string
}

// Load resolves the secret from the source. The result is trimmed of
// whitespace; an empty result is an error naming what was tried.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file == "" && src.EnvFile != "" {
		file = strings.TrimSpace(os.Getenv(src.EnvFile))
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
