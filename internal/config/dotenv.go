package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// loadDotEnv loads KEY=VALUE pairs from a dotenv file into the process environment.
// A missing file is not an error and variables already present in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
