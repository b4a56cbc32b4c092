// Package prefs persists the animation on/off preference across sessions.
package prefs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

const (
	KEY      = "animationsEnabled" // The single persisted key.
	DISABLED = "false"             // The only value that turns animations off.
	FILENAME = "prefs.toml"        // Default file name under the user config dir.
)

// Store is a file-backed animation preference.
type Store struct {
	Path string // File holding the preference; empty keeps it in memory.

	mu      sync.Mutex
	enabled bool
}

// DefaultPath is the preference file under the user's config directory.
func DefaultPath() (path string, err error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return
	}
	path = filepath.Join(dir, "lmcview", FILENAME)
	return
}

// Open reads the preference from path. Only DISABLED or a boolean false
// turns animations off; a missing file or key leaves them on.
func Open(path string) (store *Store, err error) {
	store = &Store{Path: path, enabled: true}
	if path == "" {
		return
	}

	values := map[string]any{}
	_, err = toml.DecodeFile(path, &values)
	if errors.Is(err, fs.ErrNotExist) {
		err = nil
		return
	}
	if err != nil {
		return
	}

	switch value := values[KEY].(type) {
	case string:
		store.enabled = value != DISABLED
	case bool:
		store.enabled = value
	}

	return
}

// Enabled reports whether animations are on.
func (st *Store) Enabled() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.enabled
}

// SetEnabled changes and persists the preference.
func (st *Store) SetEnabled(enabled bool) (err error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.enabled = enabled
	if st.Path == "" {
		return
	}

	value := "true"
	if !enabled {
		value = DISABLED
	}

	err = os.MkdirAll(filepath.Dir(st.Path), 0o755)
	if err != nil {
		return
	}

	file, err := os.Create(st.Path)
	if err != nil {
		return
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = toml.NewEncoder(file).Encode(map[string]string{KEY: value})
	return
}

// Toggle flips the preference and returns the new setting.
func (st *Store) Toggle() (enabled bool, err error) {
	enabled = !st.Enabled()
	err = st.SetEnabled(enabled)
	return
}
