package config

import (
	"fmt"
	"os"
)

// ResolveConfigFile decides which config file to read. An explicitly chosen
// file must exist; the default file is skipped when it is absent.
func ResolveConfigFile(configFile, defaultFile string) (string, error) {
	if configFile == "" {
		return "", nil
	}

	_, err := os.Stat(configFile)
	if configFile == defaultFile {
		if os.IsNotExist(err) {
			return "", nil
		}
		return configFile, nil
	}

	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configFile)
	}
	return configFile, nil
}
