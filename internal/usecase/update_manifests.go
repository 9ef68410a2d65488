package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/compozy/tagrelease/internal/domain"
)

// ManifestFilePermissions is used when a manifest is rewritten.
const ManifestFilePermissions = 0o644

// UpdateManifestsUseCase writes the release version into JSON manifests.
type UpdateManifestsUseCase struct {
	Fs afero.Fs
}

// Execute sets the top-level version of every existing manifest that already
// has one to the tag without its "v" prefix. Paths are relative to root.
// It returns the paths that were rewritten.
func (uc *UpdateManifestsUseCase) Execute(
	ctx context.Context,
	root string,
	manifests []string,
	tag string,
) ([]string, error) {
	fs := afero.NewBasePathFs(uc.Fs, root)
	version := domain.StripPrefix(tag)
	var updated []string
	for _, path := range manifests {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		changed, err := updateManifest(fs, filepath.Clean(path), version)
		if err != nil {
			return updated, err
		}
		if changed {
			updated = append(updated, path)
		}
	}
	return updated, nil
}

func updateManifest(fs afero.Fs, path, version string) (bool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	manifest, err := domain.ParseManifest(data)
	if err != nil {
		return false, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if !manifest.Has(domain.ManifestVersionKey) {
		return false, nil
	}
	if err := manifest.SetString(domain.ManifestVersionKey, version); err != nil {
		return false, fmt.Errorf("failed to set version in %s: %w", path, err)
	}
	if err := afero.WriteFile(fs, path, manifest.Format(), ManifestFilePermissions); err != nil {
		return false, fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return true, nil
}
