package datasource

import (
	"path/filepath"
	"slices"

	"github.com/golammostafa13/chartstudio/errors"
)

// DefaultAllowed are the kinds a Policy permits when none are listed. Neither
// touches the server's filesystem or network.
var DefaultAllowed = []Kind{KindStatic, KindSQL}

// Policy limits the data sources a remote caller may load.
type Policy struct {
	// Allowed lists the permitted kinds. Empty means DefaultAllowed.
	Allowed []Kind
	// Root confines file sources. File sources are refused without one.
	Root string
}

// Allows reports whether kind may be loaded. An empty kind is static.
func (p Policy) Allows(kind Kind) bool {
	if kind == "" {
		kind = KindStatic
	}
	allowed := p.Allowed
	if len(allowed) == 0 {
		allowed = DefaultAllowed
	}
	return slices.Contains(allowed, kind)
}

// Check validates cfg against the policy. File paths are resolved against
// Root; the returned config carries the resolved path.
func (p Policy) Check(cfg Config) (Config, error) {
	if !p.Allows(cfg.Type) {
		return cfg, errors.WithHint(
			errors.Wrapf(errors.ErrSourceNotAllowed, "%s sources are disabled", string(cfg.Type)),
			"add the type to sources.allowed")
	}
	if cfg.Type != KindFile {
		return cfg, nil
	}
	path, err := p.resolve(cfg.Path)
	if err != nil {
		return cfg, err
	}
	cfg.Path = path
	return cfg, nil
}

// resolve maps path into Root. Relative paths must stay local; absolute
// paths must already point inside Root. Symlinks are followed when the
// target exists so a link cannot lead out of Root.
func (p Policy) resolve(path string) (string, error) {
	if p.Root == "" {
		return "", errors.WithHint(
			errors.Wrap(errors.ErrSourceNotAllowed, "file sources need a data root"),
			"set sources.root")
	}
	if path == "" {
		return "", errors.Wrap(errors.ErrInvalidRequest, "file data source needs a path")
	}
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return "", errors.Wrapf(err, "resolve data root %s", p.Root)
	}

	var full string
	switch {
	case filepath.IsAbs(path):
		full = filepath.Clean(path)
	case filepath.IsLocal(path):
		full = filepath.Join(root, path)
	default:
		return "", outsideRoot(path)
	}
	if !within(root, full) {
		return "", outsideRoot(path)
	}

	if real, err := filepath.EvalSymlinks(full); err == nil {
		realRoot, err := filepath.EvalSymlinks(root)
		if err != nil || !within(realRoot, real) {
			return "", outsideRoot(path)
		}
	}
	return full, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func outsideRoot(path string) error {
	return errors.WithHint(
		errors.Wrapf(errors.ErrSourceNotAllowed, "path %q is outside the data root", path),
		"use a path relative to sources.root")
}
