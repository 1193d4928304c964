package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Loaded is a resolved config plus the warnings worth showing to the user.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
	Explicit bool
}

// Load reads the config at explicitPath, or at the XDG location when empty.
// A missing file yields defaults. It is only worth a warning when the user
// named the file, since most netscreen installs never create one.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{
		Path:     path,
		Config:   Default(),
		Explicit: strings.TrimSpace(explicitPath) != "",
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if loaded.Explicit {
			loaded.Warnings = []Warning{{Message: fmt.Sprintf("config file %q not found; using defaults", path)}}
		}
		return loaded, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(string(content), loaded.Config)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	loaded.Config = cfg
	loaded.Warnings = warnings
	loaded.Exists = true
	return loaded, nil
}
