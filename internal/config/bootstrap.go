package config

import (
	"errors"
	"os"
	"path/filepath"
)

// Ensure returns the path of the user config under dataDir, writing the
// defaults there first if no config exists yet.
func Ensure(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := SaveAtomic(userPath, Default()); err != nil {
		return "", err
	}
	return userPath, nil
}
