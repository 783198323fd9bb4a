package userdata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// MoveRequest describes a move of one resolved path onto another.
type MoveRequest struct {
	Source    string
	Dest      string
	Overwrite bool
}

// Move renames req.Source to req.Dest. An existing directory at Dest receives
// the source under its own base name. Renames across filesystems fall back to
// copying and deleting the source.
//
// The destination check and the rename are separate steps, so a file created
// at Dest in between is replaced even when Overwrite is false.
func (s *Storage) Move(req MoveRequest) error {
	info, err := lstatIfExists(req.Dest)
	if err != nil {
		return fmt.Errorf("stat destination: %w", err)
	}
	if info != nil && !req.Overwrite {
		return ErrDestinationExists
	}

	target := req.Dest
	if info != nil && info.IsDir() {
		target = filepath.Join(req.Dest, filepath.Base(req.Source))
		inner, err := lstatIfExists(target)
		if err != nil {
			return fmt.Errorf("stat destination: %w", err)
		}
		if inner != nil && inner.IsDir() && filepath.Clean(target) != filepath.Clean(req.Source) {
			return fmt.Errorf("%s: %w", target, ErrDestinationIsDir)
		}
	}

	if filepath.Clean(req.Source) == filepath.Clean(target) {
		return nil
	}

	err = s.rename(req.Source, target)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("rename: %w", err)
	}
	if err := moveByCopy(req.Source, target); err != nil {
		return fmt.Errorf("move across devices: %w", err)
	}
	return nil
}

// lstatIfExists returns nil info and nil error when p does not exist.
// Symlinks are reported as themselves, never as their target.
func lstatIfExists(p string) (fs.FileInfo, error) {
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return info, err
}

// moveByCopy copies src next to dst and renames the copy into place, so a
// symlink at dst is replaced rather than written through.
func moveByCopy(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if info.IsDir() {
		existing, err := lstatIfExists(dst)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.IsDir() {
				return fmt.Errorf("%s: %w", dst, ErrDestinationIsDir)
			}
			if err := os.Remove(dst); err != nil {
				return err
			}
		}
		if err := copyTree(src, dst); err != nil {
			return err
		}
		return os.RemoveAll(src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := copyEntry(src, tmpPath, info); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Remove(src)
}
