package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func secretFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFilePrecedesValue(t *testing.T) {
	path := secretFile(t, "from-file\n")

	got, err := Load(Source{Name: "api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("got %q, want %q", got, "from-file")
	}
}

func TestLoadFallsBackToEnvFile(t *testing.T) {
	path := secretFile(t, "from-env-file")
	t.Setenv("JOBSCOUT_TEST_SECRET_FILE", path)

	got, err := Load(Source{Name: "api key", EnvFile: "JOBSCOUT_TEST_SECRET_FILE"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "from-env-file" {
		t.Fatalf("got %q, want %q", got, "from-env-file")
	}
}

func TestLoadExplicitFileWinsOverEnvFile(t *testing.T) {
	explicit := secretFile(t, "explicit")
	t.Setenv("JOBSCOUT_TEST_SECRET_FILE", secretFile(t, "via-env"))

	got, err := Load(Source{File: explicit, EnvFile: "JOBSCOUT_TEST_SECRET_FILE"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "explicit" {
		t.Fatalf("got %q, want %q", got, "explicit")
	}
}

func TestLoadUnsetEnvFileUsesInlineValue(t *testing.T) {
	t.Setenv("JOBSCOUT_TEST_SECRET_FILE", "")

	got, err := Load(Source{Value: " inline ", EnvFile: "JOBSCOUT_TEST_SECRET_FILE"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "inline" {
		t.Fatalf("got %q, want %q", got, "inline")
	}
}

func TestLoadEmptyFileErrors(t *testing.T) {
	path := secretFile(t, "  \n")

	_, err := Load(Source{Name: "api key", File: path})
	if err == nil {
		t.Fatalf("expected an error for an empty secret file")
	}
	if !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "api key"})
	if err == nil || !strings.Contains(err.Error(), "api key is not configured") {
		t.Fatalf("wrong error: %v", err)
	}
}
