package janitor

import (
	"errors"
	"fmt"
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

const listBatchSize = 256

// Lister yields the names present in a cache directory. It reads the
// directory in batches and cannot be restarted.
type Lister struct {
	dir     string
	file    afero.File
	exclude []string
	pending []string
	done    bool
}

// OpenLister opens dir for listing. Names matching any exclude pattern are
// never yielded.
func OpenLister(fs afero.Fs, dir string, exclude []string) (*Lister, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryUnavailable, dir)
	}

	f, err := fs.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}

	return &Lister{dir: dir, file: f, exclude: exclude}, nil
}

// Next returns the next name, or io.EOF once the directory is exhausted.
func (l *Lister) Next() (string, error) {
	for {
		if len(l.pending) > 0 {
			name := l.pending[0]
			l.pending = l.pending[1:]
			if l.excluded(name) {
				continue
			}
			return name, nil
		}
		if l.done {
			return "", io.EOF
		}

		names, err := l.file.Readdirnames(listBatchSize)
		l.pending = names
		if errors.Is(err, io.EOF) || (err == nil && len(names) == 0) {
			l.done = true
			continue
		}
		if err != nil {
			l.done = true
			return "", fmt.Errorf("%w: read %s: %w", ErrDirectoryUnavailable, l.dir, err)
		}
	}
}

func (l *Lister) excluded(name string) bool {
	for _, pattern := range l.exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (l *Lister) Close() error {
	return l.file.Close()
}
