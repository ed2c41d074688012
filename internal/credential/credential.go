// Package credential locates and reads the saved browser session that
// authenticates the notebook automation.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
)

// ErrMissing means no session snapshot exists at the configured path.
var ErrMissing = errors.New("session credential missing")

// Hint tells the operator how to create the credential.
const Hint = "sign in once with `ytbrief login` to save the browser session"

// Handle points at the session snapshot and the persistent browser profile.
type Handle struct {
	StatePath  string
	ProfileDir string
}

// NewHandle expands "~" in both paths.
func NewHandle(statePath, profileDir string) (Handle, error) {
	var h Handle
	var err error
	if h.StatePath, err = homedir.Expand(statePath); err != nil {
		return Handle{}, fmt.Errorf("expanding state path: %w", err)
	}
	if h.ProfileDir, err = homedir.Expand(profileDir); err != nil {
		return Handle{}, fmt.Errorf("expanding profile dir: %w", err)
	}
	return h, nil
}

// Validate checks that the snapshot exists. It never creates anything.
func (h Handle) Validate() error {
	if h.StatePath == "" {
		return fmt.Errorf("%w: no state path configured", ErrMissing)
	}
	info, err := os.Stat(h.StatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissing, h.StatePath)
		}
		return fmt.Errorf("checking session credential: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissing, h.StatePath)
	}
	return nil
}

// Load validates the handle and decodes the snapshot.
func (h Handle) Load() (*StorageState, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(h.StatePath)
	if err != nil {
		return nil, fmt.Errorf("reading session credential: %w", err)
	}
	var state StorageState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding session credential %s: %w", h.StatePath, err)
	}
	return &state, nil
}

// Save writes state to StatePath, readable by the owner only.
func (h Handle) Save(state *StorageState) error {
	if h.StatePath == "" {
		return errors.New("no state path configured")
	}
	if err := os.MkdirAll(filepath.Dir(h.StatePath), 0o700); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session credential: %w", err)
	}
	tmp := h.StatePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session credential: %w", err)
	}
	return os.Rename(tmp, h.StatePath)
}

// StorageState is the cookies plus per-origin localStorage of a signed-in
// browser, in the layout Playwright's storageState uses.
type StorageState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// Session reports whether the cookie has no expiry.
func (c Cookie) Session() bool {
	return c.Expires <= 0
}

type OriginState struct {
	Origin       string      `json:"origin"`
	LocalStorage []NameValue `json:"localStorage"`
}

type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CookiesFor returns cookies whose domain matches host, following the
// leading-dot convention for domain cookies.
func (s *StorageState) CookiesFor(host string) []Cookie {
	var out []Cookie
	for _, c := range s.Cookies {
		d := strings.TrimPrefix(c.Domain, ".")
		if host == d || strings.HasSuffix(host, "."+d) {
			out = append(out, c)
		}
	}
	return out
}
