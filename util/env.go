package util

import (
	"os"
	os_user "os/user"
	"strings"
)

func GetenvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ExpandHomeDir replaces leading ~/ with the current user home directory.
// Filename is returned untouched if the user cannot be resolved.
func ExpandHomeDir(filename string) string {
	if !strings.HasPrefix(filename, "~/") {
		return filename
	}
	user, err := os_user.Current()
	if err != nil {
		return filename
	}
	return user.HomeDir + filename[1:]
}
