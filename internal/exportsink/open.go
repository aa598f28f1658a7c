package exportsink

import (
	"context"
	"fmt"
)

// Config selects and configures a sink driver.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the sink named by cfg.Driver. An empty driver selects fs.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	switch cfg.Driver {
	case "", DriverFS:
		return NewFS(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown export driver %q", cfg.Driver)
	}
}
