package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ResolveIdentity returns the user ID every request is scoped to. A non-empty
// override wins. Otherwise the ID stored at path is reused, and on first use a
// new UUID is generated and written there.
func ResolveIdentity(path, override string) (string, error) {
	if id := strings.TrimSpace(override); id != "" {
		return id, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr == nil {
			return id, nil
		}
		return "", fmt.Errorf("identity file %s does not contain a valid ID", path)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read identity file: %w", err)
	}

	id := uuid.NewString()
	err = writeIdentity(path, id)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, fs.ErrExist):
		// Another process stored its ID first.
		return ResolveIdentity(path, "")
	default:
		return "", err
	}
}

// writeIdentity stores id through a temporary file so a reader never sees a
// partial ID. It fails with fs.ErrExist when path already exists.
func writeIdentity(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create identity directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".identity-*")
	if err != nil {
		return fmt.Errorf("create identity file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write identity file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close identity file: %w", err)
	}
	if err := os.Link(tmp.Name(), path); err != nil {
		return fmt.Errorf("store identity file: %w", err)
	}
	return nil
}
