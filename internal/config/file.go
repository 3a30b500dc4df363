package config

import (
	"os"

	"gopkg.in/yaml.v3"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

// MergeFile overlays the keys present in a YAML file onto c.
// Keys absent from the file keep their current value.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.Wrapf(err, apperr.CodeConfig, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperr.Wrapf(err, apperr.CodeConfig, "parse config file %s", path)
	}
	return nil
}
