package external

import (
	"os"
	"os/exec"
	"strings"

	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

//
// Runs the external operator tools (nodetool, sstable2json, range_repair)
// and captures what they print.
//

// Runner - invokes external commands with logged command lines
type Runner struct {
	logger *logh.ContextualLogger
}

// NewRunner - creates a command runner
func NewRunner() *Runner {

	return &Runner{
		logger: logh.CreateContextualLogger(constants.StringsPKG, "external"),
	}
}

// Output - runs a command and returns its stdout; stderr goes to ours
func (r *Runner) Output(name string, args ...string) ([]byte, error) {

	if logh.DebugEnabled {
		r.logger.Debug().Msgf("running: %s %s", name, strings.Join(args, constants.StringsWhitespace))
	}

	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		if logh.ErrorEnabled {
			r.logger.Error().Err(err).Msgf("command failed: %s", name)
		}
		return nil, err
	}

	return out, nil
}

// Shell - runs a command line through the shell, inheriting our streams
func (r *Runner) Shell(command string) error {

	if logh.DebugEnabled {
		r.logger.Debug().Msgf("running: %s", command)
	}

	cmd := exec.Command("/bin/sh", "-c", command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
