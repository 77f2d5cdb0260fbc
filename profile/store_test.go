package profile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customDoc = `resolution:
  width: 10
  height: 10
color_mapping:
  mode: monochrome
  palette:
    - [0, 0, 0]
    - [255, 255, 255]
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "displays"))
	require.NoError(t, err)
	return s
}

func TestLoadBuiltin(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Load("mono-800x480")
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)
	assert.Equal(t, Monochrome, p.Mode)
	assert.False(t, p.Custom)
}

func TestLoadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCached(t *testing.T) {
	s := newTestStore(t)

	p1, err := s.Load("mono-800x480")
	require.NoError(t, err)
	p2, err := s.Load("mono-800x480")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestSaveShadowsBuiltin(t *testing.T) {
	s := newTestStore(t)

	// Prime the cache with the built-in.
	p, err := s.Load("mono-800x480")
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)

	require.NoError(t, s.Save("mono-800x480", []byte(customDoc)))

	p, err = s.Load("mono-800x480")
	require.NoError(t, err)
	assert.Equal(t, 10, p.Width, "save must invalidate the cached value")
	assert.True(t, p.Custom)
}

func TestSaveRejectsInvalid(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.Save("bad name!", []byte(customDoc)), ErrInvalid)
	assert.ErrorIs(t, s.Save("panel", []byte("resolution: {width: -1, height: 10}")), ErrInvalid)
}

func TestDeleteAndReset(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.Delete("mono-800x480"), ErrNotFound, "built-ins cannot be deleted")

	require.NoError(t, s.Save("mono-800x480", []byte(customDoc)))
	require.NoError(t, s.Reset("mono-800x480"))

	p, err := s.Load("mono-800x480")
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width, "reset restores the built-in")

	require.NoError(t, s.Save("custom-panel", []byte(customDoc)))
	assert.ErrorIs(t, s.Reset("custom-panel"), ErrNotFound, "reset needs a built-in to fall back to")
	require.NoError(t, s.Delete("custom-panel"))
	_, err = s.Load("custom-panel")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDuplicate(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Duplicate("mono-800x480", "my-panel"))

	p, err := s.Load("my-panel")
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)
	assert.True(t, p.Custom)

	assert.ErrorIs(t, s.Duplicate("mono-800x480", "my-panel"), ErrExists)
	assert.ErrorIs(t, s.Duplicate("mono-800x480", "quad-400x300"), ErrExists)
	assert.ErrorIs(t, s.Duplicate("nope", "other"), ErrNotFound)
}

func TestImportExport(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Import("panel.txt", []byte(customDoc), false)
	assert.ErrorIs(t, err, ErrInvalid)

	name, err := s.Import("panel.yaml", []byte(customDoc), false)
	require.NoError(t, err)
	assert.Equal(t, "panel", name)

	_, err = s.Import("panel.yaml", []byte(customDoc), false)
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Import("panel.yaml", []byte(customDoc), true)
	assert.NoError(t, err)

	b, err := s.Export("panel")
	require.NoError(t, err)
	assert.Equal(t, customDoc, string(b), "custom documents export verbatim")

	b, err = s.Export("quad-400x300")
	require.NoError(t, err)
	p, err := Parse("quad-400x300", b)
	require.NoError(t, err)
	assert.Equal(t, FourColor, p.Mode)
}

func TestList(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("zz-custom", []byte(customDoc)))
	require.NoError(t, s.Save("mono-800x480", []byte(customDoc)))

	list, err := s.List()
	require.NoError(t, err)

	byName := make(map[string]Info, len(list))
	for i, info := range list {
		byName[info.Name] = info
		if i > 0 {
			assert.Less(t, list[i-1].Name, info.Name, "sorted by name")
		}
	}

	assert.True(t, byName["zz-custom"].Custom)
	assert.True(t, byName["mono-800x480"].Custom, "shadowed built-in lists as custom")
	assert.False(t, byName["quad-400x300"].Custom)
	assert.NotNil(t, byName["zz-custom"].ModifiedAt)
}

func TestStoreWithoutDirectory(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	_, err = s.Load("mono-800x480")
	assert.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, len(builtins))
}

func TestConcurrentLoadAndSave(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("panel", []byte(customDoc)))

	altDoc := strings.ReplaceAll(customDoc, "width: 10", "width: 12")

	// Readers must only ever see one of the two complete documents, never
	// a torn or partially parsed profile.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p, err := s.Load("panel")
				if assert.NoError(t, err) {
					assert.NoError(t, p.Validate())
					assert.Contains(t, []int{10, 12}, p.Width)
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 25; j++ {
			doc := customDoc
			if j%2 == 1 {
				doc = altDoc
			}
			assert.NoError(t, s.Save("panel", []byte(doc)))
			s.Refresh("panel")
		}
	}()

	wg.Wait()
}

func TestLoadIgnoresDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "displays")
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "oddity.yaml"), 0o755))

	_, err = s.Load("oddity")
	assert.ErrorIs(t, err, ErrNotFound)
}
