// Package credentials loads connection info for the PostgreSQL backend and
// identifies the user and host recording live entries.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileName is the credentials file looked up in the home directory.
const DefaultFileName = ".wflogger"

// RequiredMode is the only permission set accepted on the credentials file.
const RequiredMode os.FileMode = 0400

var (
	// ErrMissing is returned when the credentials file does not exist.
	ErrMissing = errors.New("credentials file does not exist")

	// ErrInsecurePermissions is returned when the credentials file is not
	// read-only for its owner.
	ErrInsecurePermissions = errors.New("credentials file permissions must be read-only for user (0400)")

	// ErrEmpty is returned when the credentials file has no content.
	ErrEmpty = errors.New("credentials file is empty")
)

// Provider supplies a PostgreSQL connection string.
type Provider interface {
	ConnString() (string, error)
}

// FileProvider reads a libpq-style connection string from a file.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a provider for path, or for ~/.wflogger if path is empty.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		path = filepath.Join(home, DefaultFileName)
	}
	return &FileProvider{Path: path}, nil
}

// ConnString returns the connection string stored in the file after
// checking that the file exists and has mode 0400.
func (p *FileProvider) ConnString() (string, error) {
	info, err := os.Stat(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrMissing, p.Path)
	}
	if err != nil {
		return "", fmt.Errorf("checking credentials file %s: %w", p.Path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("credentials path %s is not a regular file", p.Path)
	}
	if info.Mode().Perm() != RequiredMode {
		return "", fmt.Errorf("%w: %s has mode %04o", ErrInsecurePermissions, p.Path, info.Mode().Perm())
	}

	data, err := os.ReadFile(p.Path) // #nosec G304 -- path is the configured credentials file
	if err != nil {
		return "", fmt.Errorf("reading credentials file %s: %w", p.Path, err)
	}

	conn := strings.TrimSpace(string(data))
	if conn == "" {
		return "", fmt.Errorf("%w: %s", ErrEmpty, p.Path)
	}
	return conn, nil
}

// StaticProvider returns a fixed connection string.
type StaticProvider string

// ConnString returns the string itself.
func (s StaticProvider) ConnString() (string, error) {
	if s == "" {
		return "", ErrEmpty
	}
	return string(s), nil
}

// Identity names who is recording an entry and where.
type Identity struct {
	UserID   string
	Hostname string
}

// CurrentIdentity resolves the user from $USER (falling back to the base
// name of $HOME) and the host from $HOSTNAME (falling back to os.Hostname).
func CurrentIdentity() (Identity, error) {
	var id Identity

	id.UserID = os.Getenv("USER")
	if id.UserID == "" {
		if home := os.Getenv("HOME"); home != "" {
			id.UserID = filepath.Base(home)
		}
	}
	if id.UserID == "" {
		return id, errors.New("cannot determine user: neither USER nor HOME is set")
	}

	id.Hostname = os.Getenv("HOSTNAME")
	if id.Hostname == "" {
		host, err := os.Hostname()
		if err != nil {
			return id, fmt.Errorf("determining hostname: %w", err)
		}
		id.Hostname = host
	}

	return id, nil
}
