package commonGo

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachFileLogger(t *testing.T) {
	t.Run("disabled should not create a file", func(t *testing.T) {
		dir := t.TempDir()
		handler, err := AttachFileLogger(ArgsFileLogger{
			WorkingDir: dir,
			LogsPath:   "logs",
			FilePrefix: "dashboard",
		})
		require.NoError(t, err)
		assert.Nil(t, handler)

		_, err = os.Stat(filepath.Join(dir, "logs"))
		assert.True(t, os.IsNotExist(err))
	})
	t.Run("enabled should create the log file", func(t *testing.T) {
		dir := t.TempDir()
		handler, err := AttachFileLogger(ArgsFileLogger{
			Enabled:      true,
			WorkingDir:   dir,
			LogsPath:     "logs",
			FilePrefix:   "dashboard",
			LifeSpan:     time.Hour,
			LifeSpanInMB: 10,
		})
		require.NoError(t, err)
		require.NotNil(t, handler)
		defer func() {
			_ = handler.Close()
		}()

		entries, err := os.ReadDir(filepath.Join(dir, "logs"))
		require.NoError(t, err)
		assert.NotEmpty(t, entries)
	})
}

func TestReadEnvFile(t *testing.T) {
	t.Run("missing file should error", func(t *testing.T) {
		m := map[string]string{"KEY": ""}
		err := ReadEnvFile(filepath.Join(t.TempDir(), "missing.env"), m)
		assert.Error(t, err)
	})
	t.Run("missing key should error but keep the found ones", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("TELEMETRY_TEST_FOUND=value1\n"), 0600))
		t.Cleanup(func() {
			_ = os.Unsetenv("TELEMETRY_TEST_FOUND")
		})

		m := map[string]string{
			"TELEMETRY_TEST_FOUND":   "",
			"TELEMETRY_TEST_MISSING": "",
		}
		err := ReadEnvFile(envFile, m)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEMETRY_TEST_MISSING")
		assert.Equal(t, "value1", m["TELEMETRY_TEST_FOUND"])
	})
}

func TestCronJobStarter(t *testing.T) {
	t.Parallel()

	t.Run("should call periodically until the context is done", func(t *testing.T) {
		t.Parallel()

		clock := clockwork.NewFakeClock()
		numCalls := uint32(0)
		ctx, cancel := context.WithCancel(context.Background())

		done := CronJobStarter(ctx, clock, func(ctx context.Context) {
			atomic.AddUint32(&numCalls, 1)
		}, time.Second, false)

		for i := 1; i <= 3; i++ {
			require.NoError(t, clock.BlockUntilContext(ctx, 1))
			clock.Advance(time.Second)
			expected := uint32(i)
			require.Eventually(t, func() bool {
				return atomic.LoadUint32(&numCalls) == expected
			}, time.Second, time.Millisecond)
		}

		cancel()
		<-done

		clock.Advance(10 * time.Second)
		assert.Equal(t, uint32(3), atomic.LoadUint32(&numCalls))
	})
	t.Run("call at start should call immediately", func(t *testing.T) {
		t.Parallel()

		clock := clockwork.NewFakeClock()
		numCalls := uint32(0)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		_ = CronJobStarter(ctx, clock, func(ctx context.Context) {
			atomic.AddUint32(&numCalls, 1)
		}, time.Hour, true)

		require.Eventually(t, func() bool {
			return atomic.LoadUint32(&numCalls) == 1
		}, time.Second, time.Millisecond)
	})
}
