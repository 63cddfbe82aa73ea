package lvfs

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

var (
	ErrDriveRegistered = errors.New("drive letter already registered")
	ErrInvalidDrive    = errors.New("invalid drive")
	ErrNoDrive         = errors.New("no drive registered")
	ErrBadPath         = errors.New("path has no drive letter")
)

// Drive is one registration: the callbacks serving a drive letter.
type Drive struct {
	Letter byte
	// CacheSize is the toolkit read cache size; 0 disables caching.
	CacheSize int
	Callbacks Callbacks
}

// Registry routes toolkit paths such as "S:/images/a.bin" to the
// driver registered under the path's drive letter. A Registry is an
// explicit value owned by whoever starts the UI; it is not safe for
// concurrent use.
type Registry struct {
	drives map[byte]*Drive
	logger *slog.Logger
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		drives: make(map[byte]*Drive),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func validLetter(letter byte) bool {
	return letter >= 'A' && letter <= 'Z'
}

// Register installs a drive. Each letter can be registered once.
func (r *Registry) Register(d *Drive) error {
	if d == nil || d.Callbacks == nil {
		return fmt.Errorf("%w: missing callbacks", ErrInvalidDrive)
	}
	if !validLetter(d.Letter) {
		return fmt.Errorf("%w: letter %q", ErrInvalidDrive, d.Letter)
	}
	if d.CacheSize < 0 {
		return fmt.Errorf("%w: cache size %d", ErrInvalidDrive, d.CacheSize)
	}
	if _, ok := r.drives[d.Letter]; ok {
		return fmt.Errorf("%w: %c", ErrDriveRegistered, d.Letter)
	}
	r.drives[d.Letter] = d
	r.logger.Debug("lvfs: drive registered", "letter", string(d.Letter), "cache_size", d.CacheSize)
	return nil
}

// Unregister removes a drive so the letter can be registered again.
func (r *Registry) Unregister(letter byte) error {
	if _, ok := r.drives[letter]; !ok {
		return fmt.Errorf("%w: %c", ErrNoDrive, letter)
	}
	delete(r.drives, letter)
	r.logger.Debug("lvfs: drive unregistered", "letter", string(letter))
	return nil
}

func (r *Registry) Drive(letter byte) (*Drive, bool) {
	d, ok := r.drives[letter]
	return d, ok
}

// Letters returns the registered drive letters in order.
func (r *Registry) Letters() []byte {
	letters := make([]byte, 0, len(r.drives))
	for letter := range r.drives {
		letters = append(letters, letter)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

// Resolve splits a toolkit path into its drive and the driver-relative
// path, "S:/images/a.bin" becoming drive S and "/images/a.bin".
func (r *Registry) Resolve(path string) (*Drive, string, error) {
	if len(path) < 2 || path[1] != ':' {
		return nil, "", fmt.Errorf("%w: %q", ErrBadPath, path)
	}
	d, ok := r.drives[path[0]]
	if !ok {
		return nil, "", fmt.Errorf("%w: %c", ErrNoDrive, path[0])
	}
	return d, path[2:], nil
}
