package datasource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golammostafa13/chartstudio/errors"
)

func TestPolicyDefaultKinds(t *testing.T) {
	var p Policy
	assert.True(t, p.Allows(KindStatic))
	assert.True(t, p.Allows(""))
	assert.True(t, p.Allows(KindSQL))
	assert.False(t, p.Allows(KindAPI))
	assert.False(t, p.Allows(KindFile))

	_, err := p.Check(Config{Type: KindAPI, URL: "http://169.254.169.254/latest"})
	assert.True(t, errors.Is(err, errors.ErrSourceNotAllowed))
	assert.True(t, errors.IsClientError(err))
}

func TestPolicyFileNeedsRoot(t *testing.T) {
	p := Policy{Allowed: []Kind{KindFile}}
	_, err := p.Check(Config{Type: KindFile, Path: "sales.json"})
	assert.True(t, errors.Is(err, errors.ErrSourceNotAllowed))
}

func TestPolicyConfinesFilesToRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "sales.json"), []byte(`[]`), 0o644))
	secret := filepath.Join(base, "secrets.json")
	require.NoError(t, os.WriteFile(secret, []byte(`[{"token":"x"}]`), 0o644))

	p := Policy{Allowed: []Kind{KindFile}, Root: root}

	cfg, err := p.Check(Config{Type: KindFile, Path: "sub/sales.json"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "sales.json"), cfg.Path)

	_, err = p.Check(Config{Type: KindFile, Path: filepath.Join(root, "sub", "sales.json")})
	require.NoError(t, err, "absolute path inside the root")

	for _, path := range []string{
		secret,
		"../secrets.json",
		"sub/../../secrets.json",
		root,
	} {
		_, err := p.Check(Config{Type: KindFile, Path: path})
		assert.True(t, errors.Is(err, errors.ErrSourceNotAllowed), path)
	}

	_, err = p.Check(Config{Type: KindFile})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestPolicyRejectsSymlinkOutOfRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	secret := filepath.Join(base, "secrets.json")
	require.NoError(t, os.WriteFile(secret, []byte(`[]`), 0o644))
	if err := os.Symlink(secret, filepath.Join(root, "link.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	p := Policy{Allowed: []Kind{KindFile}, Root: root}
	_, err := p.Check(Config{Type: KindFile, Path: "link.json"})
	assert.True(t, errors.Is(err, errors.ErrSourceNotAllowed))
}

func TestConfigRedacted(t *testing.T) {
	cfg := Config{Type: KindAPI, URL: "https://api.example", Headers: map[string]string{"Authorization": "Bearer abc"}}
	out := cfg.Redacted()

	assert.Equal(t, "[redacted]", out.Headers["Authorization"])
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"], "original untouched")
	assert.Equal(t, cfg.URL, out.URL)
	assert.Nil(t, Config{Type: KindStatic}.Redacted().Headers)
}
