package lektrico

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lektrico/lektrico-go/pkg/lektrico/lektricotest"
	"github.com/lektrico/lektrico-go/pkg/log"
)

func init() {
	log.SetDefaultLogLevel(slog.LevelError)
}

const testID = 12345678

func newTestDevice(t *testing.T, fake *lektricotest.Device, opts ...Option) *Device {
	t.Helper()
	ts := fake.NewServer(t)
	opts = append([]Option{WithIDGenerator(func() int { return testID })}, opts...)
	d, err := New(ts.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}
