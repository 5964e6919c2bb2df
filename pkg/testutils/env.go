package testutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/joho/godotenv"
)

// LoadEnv loads the .env file from the project root if one exists.
// Variables already present in the environment win.
func LoadEnv() error {
	_, filename, _, _ := runtime.Caller(0)
	envPath := filepath.Join(filepath.Dir(filename), "..", "..", ".env")

	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envPath)
}

// RequireEnv returns the value of key after loading .env, skipping the test when it is empty.
func RequireEnv(t *testing.T, key string) string {
	t.Helper()
	if err := LoadEnv(); err != nil {
		t.Fatalf("failed to load .env file: %v", err)
	}
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
