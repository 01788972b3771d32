package credstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the credential in a single file readable only by the
// current user.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the credential file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}
	return filepath.Join(dir, "regctl", "credential"), nil
}

func (s *FileStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", NewNoCredentialError(fmt.Sprintf("no credential at %s", s.path))
		}
		return "", NewFailedToLoadError(fmt.Sprintf("failed to read %s", s.path), err)
	}

	cred := strings.TrimSpace(string(data))
	if cred == "" {
		return "", NewNoCredentialError(fmt.Sprintf("credential file %s is empty", s.path))
	}
	return cred, nil
}

func (s *FileStore) Save(ctx context.Context, credential string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return NewFailedToSaveError(fmt.Sprintf("failed to create %s", filepath.Dir(s.path)), err)
	}
	if err := os.WriteFile(s.path, []byte(credential), 0o600); err != nil {
		return NewFailedToSaveError(fmt.Sprintf("failed to write %s", s.path), err)
	}
	return nil
}

func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewFailedToClearError(fmt.Sprintf("failed to remove %s", s.path), err)
	}
	return nil
}
