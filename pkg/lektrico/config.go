package lektrico

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/levenlabs/go-lflag"
	"golang.org/x/time/rate"

	"github.com/lektrico/lektrico-go/pkg/log"
)

// Configured registers flags for a single device and returns it. The device
// can be used once lflag.Configure has run, which also copies the llog level
// onto the package loggers. Until then every call fails with a
// ValidationError.
func Configured() *Device {
	d := &Device{}
	host := lflag.RequiredString("lektrico-host", "IP address or hostname of the Lektrico device")
	timeout := lflag.Duration("lektrico-timeout", DefaultTimeout, "Timeout for each request to the device")
	source := lflag.String("lektrico-source", DefaultSource, "Caller id sent with commands")
	interval := lflag.Duration("lektrico-min-interval", 0, "Minimum time between requests to the device (0 disables pacing)")

	lflag.Do(func() {
		if err := log.SetDefaultLogLevelFromLLog(); err != nil {
			log.Ctx(context.Background()).Warn("keeping default log level", slog.Any("error", err))
		}
		c := config{
			host:        *host,
			timeout:     *timeout,
			source:      *source,
			minInterval: *interval,
		}
		if err := c.Validate(); err != nil {
			panic(fmt.Sprintf("lektrico validation failed: %v", err))
		}
		nd, err := New(c.host, c.options()...)
		if err != nil {
			panic(fmt.Sprintf("lektrico init failed: %v", err))
		}
		*d = *nd
	})

	return d
}

type config struct {
	host        string
	timeout     time.Duration
	source      string
	minInterval time.Duration
}

// Validate ensures the configuration is valid.
func (c config) Validate() error {
	if c.host == "" {
		return fmt.Errorf("lektrico-host is required")
	}
	if _, err := deviceURL(c.host); err != nil {
		return fmt.Errorf("failed to parse lektrico host (%s): %w", c.host, err)
	}
	if c.timeout <= 0 {
		return fmt.Errorf("lektrico-timeout must be positive")
	}
	if c.minInterval < 0 {
		return fmt.Errorf("lektrico-min-interval must not be negative")
	}
	return nil
}

func (c config) options() []Option {
	opts := []Option{
		WithTimeout(c.timeout),
		WithSource(c.source),
	}
	if c.minInterval > 0 {
		opts = append(opts, WithRateLimiter(rate.NewLimiter(rate.Every(c.minInterval), 1)))
	}
	return opts
}
