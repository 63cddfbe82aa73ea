package sdcard

import (
	"io"
	"log/slog"

	"github.com/rstms/sdfs"
	"github.com/rstms/sdfs/hostfs"
	"github.com/rstms/sdfs/image"
	"github.com/rstms/sdfs/lvfs"
)

// Card is a mounted card registered with a toolkit registry.
type Card struct {
	cfg    *Config
	reg    *lvfs.Registry
	driver *Driver
	closer io.Closer
}

// Mount opens the backend named by cfg. The closer, when not nil,
// releases the backend.
func Mount(cfg *Config) (sdfs.Backend, io.Closer, error) {
	switch {
	case cfg.Image != "":
		img, err := image.OpenImage(cfg.Image)
		if err != nil {
			return nil, nil, Fatal(err)
		}
		return img.FileSystem(), img, nil
	case cfg.Mount != "":
		h, err := hostfs.NewOs(cfg.Mount)
		if err != nil {
			return nil, nil, err
		}
		return h, nil, nil
	}
	return nil, nil, sdfs.ErrNotMounted
}

// Begin mounts the card and registers its driver.
func Begin(reg *lvfs.Registry, cfg *Config, opts ...Option) (*Card, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := optionLogger(opts)
	backend, closer, err := Mount(cfg)
	if err != nil {
		logger.Error("sdcard: card mount failed", "image", cfg.Image, "mount", cfg.Mount, "error", err)
		return nil, err
	}
	logger.Info("sdcard: card mounted", "image", cfg.Image, "mount", cfg.Mount)

	card, err := BeginWith(reg, cfg, backend, opts...)
	if err != nil {
		closeMount(logger, closer)
		return nil, err
	}
	card.closer = closer
	return card, nil
}

// closeMount releases a backend that never got registered.
func closeMount(logger *slog.Logger, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("sdcard: card close failed", "error", err)
	}
}

func optionLogger(opts []Option) *slog.Logger {
	d := &Driver{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d.logger
}

// BeginWith registers a driver over an already mounted backend.
func BeginWith(reg *lvfs.Registry, cfg *Config, backend sdfs.Backend, opts ...Option) (*Card, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithMaxFilename(cfg.MaxFilename)}, opts...)
	driver := NewDriver(backend, opts...)
	drive := &lvfs.Drive{
		Letter:    cfg.DriveLetter(),
		CacheSize: cfg.CacheSize,
		Callbacks: driver,
	}
	if err := reg.Register(drive); err != nil {
		return nil, err
	}
	driver.logger.Debug("sdcard: driver registered", "letter", string(drive.Letter))
	return &Card{cfg: cfg, reg: reg, driver: driver}, nil
}

func (c *Card) Driver() *Driver {
	return c.driver
}

func (c *Card) Letter() byte {
	return c.cfg.DriveLetter()
}

// End unregisters the drive and releases the card. Handles the toolkit
// left open are closed first.
func (c *Card) End() error {
	err := c.reg.Unregister(c.Letter())
	if leaked := c.driver.CloseAll(); leaked > 0 {
		c.driver.logger.Warn("sdcard: handles left open at end", "count", leaked)
	}
	if c.closer != nil {
		if cerr := c.closer.Close(); cerr != nil && err == nil {
			err = Fatal(cerr)
		}
		c.closer = nil
	}
	return err
}
