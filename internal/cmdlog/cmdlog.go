package cmdlog

import (
	"time"

	"curator/internal/logging"
	"curator/internal/metrics"
)

// Run executes f as the named command, counting it and logging <cmd>_ok or <cmd>_error.
func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	start := time.Now()
	err := f()
	if err != nil {
		metrics.IncCommandError(cmd)
		logging.Error().Err(err).Str("cmd", cmd).Msg(cmd + "_error")
	} else {
		logging.Info().Str("cmd", cmd).Dur("took", time.Since(start)).Msg(cmd + "_ok")
	}
	return err
}
