package manual

import (
	"os"
	"path/filepath"
	"strings"
)

// ErrLoad names the manual file that failed to load.
type ErrLoad struct {
	File string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("%v: %v", err.File, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}

// ErrFormat is a manual file extension with no loader.
type ErrFormat string

func (err ErrFormat) Error() string {
	return f("'%v' is not a known manual format", string(err))
}

// Load a manual file, selecting the loader by extension: ".h" for C
// headers, ".yaml" or ".yml" for YAML.
func Load(path string) (man *Manual, err error) {
	defer func() {
		if err != nil {
			err = &ErrLoad{File: path, Err: err}
		}
	}()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".h", ".yaml", ".yml":
	default:
		err = ErrFormat(ext)
		return
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if ext == ".h" {
		return LoadHeader(inf)
	}

	return LoadYAML(inf)
}
