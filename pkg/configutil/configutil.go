package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalVariant returns the override file of `path`, "config.json5"
// becomes "config.local.json5".
func LocalVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// readOne decodes `path` into `out`, found is false if it does not exist.
func readOne[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig decodes the json5 file at `path` and then merges its local
// variant on top (see LocalVariant), non zero fields of the local file win.
//
// os.ErrNotExist is returned if neither file exists.
func ReadConfig[T any](path string) (T, error) {
	var out T
	found, err := readOne(path, &out)
	if err != nil {
		return out, err
	}

	local := LocalVariant(path)
	var override T
	foundLocal, err := readOne(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
		slog.Debug("applied local config overrides", "file", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for `name` with ReadConfig in the working
// directory and then in each of its parents.
func ReadRecursively[T any](name string) (T, error) {
	cwd, err := os.Getwd()
	if err != nil {
		var zero T
		return zero, err
	}
	return readFrom[T](cwd, name)
}

func readFrom[T any](dir, name string) (T, error) {
	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !errors.Is(err, os.ErrNotExist) {
			return config, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			var zero T
			return zero, os.ErrNotExist
		}
		dir = parent
	}
}
