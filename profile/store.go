package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const ext = ".yaml"

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Info is one row of a profile listing.
type Info struct {
	Name       string     `json:"name"`
	Custom     bool       `json:"is_custom"`
	ModifiedAt *time.Time `json:"modified_at"`
}

// Store resolves named profiles from the built-in set overlaid by a
// directory of user-managed YAML documents. Custom documents shadow
// built-ins of the same name.
//
// Parsed profiles are cached; reads take the shared lock and mutating
// operations drop the cached value so the next load re-parses. A cached
// entry is only ever replaced wholesale, never mutated in place.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*Profile
}

// NewStore returns a store overlaying dir on the built-in profiles. The
// directory is created if missing; dir may be empty for a built-ins-only
// store.
func NewStore(dir string) (*Store, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Store{
		dir:   dir,
		cache: make(map[string]*Profile),
	}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

func (s *Store) customExists(name string) bool {
	if s.dir == "" {
		return false
	}
	info, err := os.Stat(s.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Load returns the parsed, validated profile for name, from cache when
// possible. Callers must treat the result as read-only.
func (s *Store) Load(name string) (*Profile, error) {
	s.mu.RLock()
	p, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := s.read(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// A concurrent load may have won the race; keep whichever value is
	// already visible so readers agree.
	if cached, ok := s.cache[name]; ok {
		p = cached
	} else {
		s.cache[name] = p
	}
	s.mu.Unlock()

	return p, nil
}

func (s *Store) read(name string) (*Profile, error) {
	if s.customExists(name) {
		b, err := os.ReadFile(s.path(name))
		if err != nil {
			return nil, err
		}
		p, err := Parse(name, b)
		if err != nil {
			return nil, err
		}
		p.Custom = true
		return p, nil
	}

	if p, ok := builtins[name]; ok {
		return p.clone(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Refresh drops the cached value for name so the next Load re-reads it.
func (s *Store) Refresh(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// List returns every known profile name, built-in and custom, sorted.
func (s *Store) List() ([]Info, error) {
	infos := make(map[string]Info, len(builtins))
	for name := range builtins {
		infos[name] = Info{Name: name}
	}

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), ext)
			info := Info{Name: name, Custom: true}
			if fi, err := e.Info(); err == nil {
				mod := fi.ModTime()
				info.ModifiedAt = &mod
			}
			infos[name] = info
		}
	}

	list := make([]Info, 0, len(infos))
	for _, info := range infos {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	return list, nil
}

// Save validates and persists a custom profile document, shadowing any
// built-in of the same name.
func (s *Store) Save(name string, b []byte) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: name %q must contain only alphanumeric characters, hyphens and underscores", ErrInvalid, name)
	}

	if _, err := Parse(name, b); err != nil {
		return err
	}

	// Write-then-rename so a concurrent Load never reads a half-written
	// document.
	f, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), s.path(name)); err != nil {
		os.Remove(f.Name())
		return err
	}

	s.Refresh(name)
	return nil
}

// Delete removes a custom profile. Built-ins cannot be deleted, only
// shadowed or reset.
func (s *Store) Delete(name string) error {
	if !s.customExists(name) {
		return fmt.Errorf("%w: no custom profile %s", ErrNotFound, name)
	}
	if err := os.Remove(s.path(name)); err != nil {
		return err
	}
	s.Refresh(name)
	return nil
}

// Reset removes the custom document shadowing a built-in, restoring the
// default.
func (s *Store) Reset(name string) error {
	if _, ok := builtins[name]; !ok {
		return fmt.Errorf("%w: no built-in profile %s", ErrNotFound, name)
	}
	return s.Delete(name)
}

// Duplicate copies an existing profile under a new name.
func (s *Store) Duplicate(src, dst string) error {
	if !validName.MatchString(dst) {
		return fmt.Errorf("%w: name %q must contain only alphanumeric characters, hyphens and underscores", ErrInvalid, dst)
	}
	if _, ok := builtins[dst]; ok || s.customExists(dst) {
		return fmt.Errorf("%w: %s", ErrExists, dst)
	}

	b, err := s.Export(src)
	if err != nil {
		return err
	}

	return s.Save(dst, b)
}

// Export returns the YAML document for a profile. Custom documents are
// returned verbatim; built-ins are rendered on the fly.
func (s *Store) Export(name string) ([]byte, error) {
	if s.customExists(name) {
		return os.ReadFile(s.path(name))
	}
	if p, ok := builtins[name]; ok {
		return Encode(p)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Import installs an uploaded document. The profile name is taken from the
// filename; existing custom profiles are only replaced when overwrite is
// set.
func (s *Store) Import(filename string, b []byte, overwrite bool) (string, error) {
	if !strings.HasSuffix(filename, ext) {
		return "", fmt.Errorf("%w: filename %q must end with %s", ErrInvalid, filename, ext)
	}
	name := strings.TrimSuffix(filepath.Base(filename), ext)

	if s.customExists(name) && !overwrite {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}

	if err := s.Save(name, b); err != nil {
		return "", err
	}
	return name, nil
}
