package utils

import (
	"os"
	"strings"
)

// ReadTrimmedFile reads a small text file (a key or passphrase) and strips surrounding whitespace.
func ReadTrimmedFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// GetEnv returns the environment variable key, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
