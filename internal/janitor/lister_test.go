package janitor

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, l *Lister) []string {
	t.Helper()
	var names []string
	for {
		name, err := l.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestListerExcludes(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"fam1", "fam2.working", "cleanup.lock", ".hidden"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/cache", name), nil, 0o644))
	}

	l, err := OpenLister(fs, "/cache", []string{"*.lock", ".*"})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, []string{"fam1", "fam2.working"}, drain(t, l))

	_, err = l.Next()
	assert.ErrorIs(t, err, io.EOF, "lister is not restartable")
}

func TestListerReadsInBatches(t *testing.T) {
	fs := afero.NewMemMapFs()
	want := make([]string, 0, 3*listBatchSize)
	for i := 0; i < cap(want); i++ {
		name := fmt.Sprintf("fam%04d", i)
		want = append(want, name)
		require.NoError(t, afero.WriteFile(fs, filepath.Join("/cache", name), nil, 0o644))
	}

	l, err := OpenLister(fs, "/cache", nil)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, want, drain(t, l))
}

func TestListerDirectoryUnavailable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache-file", nil, 0o644))

	_, err := OpenLister(fs, "/missing", nil)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)

	_, err = OpenLister(fs, "/cache-file", nil)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestListerRejectsBadPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/cache", 0o755))

	_, err := OpenLister(fs, "/cache", []string{"[unclosed"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDirectoryUnavailable)
}
