package checks

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/JonathanRyzowy/maintenance-release-operator/internal/manifest"
	"github.com/JonathanRyzowy/maintenance-release-operator/internal/npm"
)

// PackageManager reports dependency state for a project.
type PackageManager interface {
	Outdated(ctx context.Context) (map[string]npm.OutdatedPackage, error)
	Audit(ctx context.Context) (npm.Vulnerabilities, error)
}

// Project is the directory being checked.
type Project struct {
	Root string
	// FS is rooted at Root. All file predicates go through it.
	FS fs.FS
	// ManifestName is the manifest path relative to Root.
	ManifestName string
	PM           PackageManager

	loadOnce sync.Once
	manifest *manifest.Manifest
	loadErr  error
}

// NewProject returns a Project for root backed by the OS filesystem.
func NewProject(root, manifestName string, pm PackageManager) *Project {
	if manifestName == "" {
		manifestName = "package.json"
	}
	return &Project{
		Root:         root,
		FS:           os.DirFS(root),
		ManifestName: filepath.ToSlash(manifestName),
		PM:           pm,
	}
}

// Exists reports whether name (slash separated, relative to Root) exists.
func (p *Project) Exists(name string) bool {
	_, err := fs.Stat(p.FS, name)
	return err == nil
}

// HasManifest reports whether the manifest file exists.
func (p *Project) HasManifest() bool {
	return p.Exists(p.ManifestName)
}

// Manifest loads and caches the manifest. A missing manifest returns an
// error wrapping manifest.ErrNotFound.
func (p *Project) Manifest() (*manifest.Manifest, error) {
	p.loadOnce.Do(func() {
		data, err := fs.ReadFile(p.FS, p.ManifestName)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				p.loadErr = manifest.ErrNotFound
				return
			}
			p.loadErr = err
			return
		}
		p.manifest, p.loadErr = manifest.Parse(data)
	})
	return p.manifest, p.loadErr
}
