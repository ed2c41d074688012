package credential

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleState = `{
  "cookies": [
    {"name": "SID", "value": "abc", "domain": ".google.com", "path": "/", "expires": 1893456000, "httpOnly": true, "secure": true, "sameSite": "Lax"},
    {"name": "pref", "value": "1", "domain": "notebooklm.google.com", "path": "/", "expires": -1, "httpOnly": false, "secure": true}
  ],
  "origins": [
    {"origin": "https://notebooklm.google.com", "localStorage": [{"name": "theme", "value": "dark"}]}
  ]
}`

func TestValidateMissing(t *testing.T) {
	h := Handle{StatePath: filepath.Join(t.TempDir(), "browser_state.json")}
	err := h.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissing)

	_, err = h.Load()
	assert.ErrorIs(t, err, ErrMissing)

	assert.ErrorIs(t, Handle{}.Validate(), ErrMissing)
	assert.ErrorIs(t, Handle{StatePath: t.TempDir()}.Validate(), ErrMissing)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser_state.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleState), 0o600))

	state, err := Handle{StatePath: path}.Load()
	require.NoError(t, err)

	require.Len(t, state.Cookies, 2)
	assert.Equal(t, "SID", state.Cookies[0].Name)
	assert.True(t, state.Cookies[0].HTTPOnly)
	assert.False(t, state.Cookies[0].Session())
	assert.True(t, state.Cookies[1].Session())
	require.Len(t, state.Origins, 1)
	assert.Equal(t, "dark", state.Origins[0].LocalStorage[0].Value)

	assert.Len(t, state.CookiesFor("notebooklm.google.com"), 2)
	assert.Len(t, state.CookiesFor("accounts.google.com"), 1)
	assert.Empty(t, state.CookiesFor("example.com"))
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Handle{StatePath: path}.Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissing)
}

func TestSaveRoundTrip(t *testing.T) {
	h := Handle{StatePath: filepath.Join(t.TempDir(), "nested", "browser_state.json")}
	want := &StorageState{Cookies: []Cookie{{Name: "a", Value: "b", Domain: "x.com", Path: "/"}}}
	require.NoError(t, h.Save(want))

	info, err := os.Stat(h.StatePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := h.Load()
	require.NoError(t, err)
	assert.Equal(t, want.Cookies, got.Cookies)
}

func TestNewHandleExpandsHome(t *testing.T) {
	h, err := NewHandle("~/state.json", "/abs/profile")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(h.StatePath))
	assert.Equal(t, "state.json", filepath.Base(h.StatePath))
	assert.Equal(t, "/abs/profile", h.ProfileDir)
}
