package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
)

const dumpExt = ".http"

// FilesystemOutput writes each exchange to "<id>.http" inside a directory.
type FilesystemOutput struct {
	dir string
}

// NewFilesystemOutput creates `dir` if needed and removes the dumps of a
// previous run from it, other files are left alone.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	stale, err := filepath.Glob(filepath.Join(dir, "*"+dumpExt))
	if err != nil {
		return FilesystemOutput{}, err
	}
	for _, path := range stale {
		err = os.Remove(path)
		if err != nil {
			return FilesystemOutput{}, err
		}
	}
	return FilesystemOutput{dir: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.dir, id+dumpExt)
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		slog.Warn("write http dump", "path", path, "err", err)
	}
}
