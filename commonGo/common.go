package commonGo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/multiversx/mx-chain-logger-go/file"
)

// ArgsFileLogger defines the arguments for the optional log file
type ArgsFileLogger struct {
	Enabled      bool
	WorkingDir   string
	LogsPath     string
	FilePrefix   string
	LifeSpan     time.Duration
	LifeSpanInMB uint64
}

// AttachFileLogger creates the log file and applies its rotation policy. Returns nil if file logging is disabled.
func AttachFileLogger(args ArgsFileLogger) (FileLoggingHandler, error) {
	if !args.Enabled {
		return nil, nil
	}

	logFile, err := file.NewFileLogging(file.ArgsFileLogging{
		WorkingDir:      args.WorkingDir,
		DefaultLogsPath: args.LogsPath,
		LogFilePrefix:   args.FilePrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("%w creating a log file", err)
	}

	if args.LifeSpan > 0 {
		err = logFile.ChangeFileLifeSpan(args.LifeSpan, args.LifeSpanInMB)
		if err != nil {
			_ = logFile.Close()
			return nil, fmt.Errorf("%w changing the log file life span", err)
		}
	}

	return logFile, nil
}

// ReadEnvFile will read the file contents in the provided map. Keys missing from the file are reported as an error
// but the keys that were found are still populated.
func ReadEnvFile(envFile string, m map[string]string) error {
	err := godotenv.Load(envFile)
	if err != nil {
		return err
	}

	var missing error
	for k := range m {
		val := os.Getenv(k)
		if len(val) == 0 {
			missing = fmt.Errorf("%s is not set in the .env file", k)
			continue
		}

		m[k] = val
	}

	return missing
}

// CronJobStarter is able to start a go routine that periodically calls the provided handler. The time between calls is
// provided as timeToCall. The returned channel is closed after the go routine exited, so no handler call can happen
// after a receive on it.
func CronJobStarter(
	ctx context.Context,
	clock clockwork.Clock,
	handler func(ctx context.Context),
	timeToCall time.Duration,
	callAtStart bool,
) <-chan struct{} {
	done := make(chan struct{})
	timer := clock.NewTimer(timeToCall)

	go func() {
		defer close(done)
		defer timer.Stop()

		if callAtStart {
			handler(ctx)
		}

		for {
			select {
			case <-timer.Chan():
				if ctx.Err() != nil {
					return
				}
				handler(ctx)
				timer.Reset(timeToCall)
			case <-ctx.Done():
				return
			}
		}
	}()

	return done
}
