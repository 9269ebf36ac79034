package sceneyaml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrOutsideSceneDir rejects texture paths that leave the scene file's
// directory, directly or through a symlink.
var ErrOutsideSceneDir = errors.New("texture path outside scene directory")

// assetRoot resolves texture files against the scene file's directory.
type assetRoot struct {
	abs string
}

func newAssetRoot(dir string) (*assetRoot, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if abs, err = filepath.EvalSymlinks(abs); err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory", abs)
	}
	return &assetRoot{abs: abs}, nil
}

func (r *assetRoot) resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty texture path")
	}
	clean := filepath.Clean(p)
	abs := filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "")
	if !abs && (clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator))) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSceneDir, p)
	}
	joined := clean
	if !abs {
		joined = filepath.Join(r.abs, clean)
	}
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !within(resolved, r.abs) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideSceneDir, p, resolved)
	}
	return resolved, nil
}

func within(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}
