package scheduler

import (
	"strings"
	"time"

	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
	"github.com/casstools/casstools/lib/opserr"
)

//
// The scheduled repair workflow. Dropped in cron on every node, not more
// often than hourly: each run decides through the bookkeeping tables
// whether this node should repair now, and if so claims the slot and walks
// the range repair tool through its steps.
//

// CommandRunner - the slice of the external runner the scheduler needs
type CommandRunner interface {
	Output(name string, args ...string) ([]byte, error)
	Shell(command string) error
}

// Config - one node's scheduling configuration
type Config struct {
	Node            string
	TTL             int
	RangeRepairTool string
	LocalOnly       bool

	// time given to the mutex row to settle before re-reading it
	MutexSettleDelay time.Duration
}

// Scheduler - coordinates one scheduled repair run
type Scheduler struct {
	backend Backend
	runner  CommandRunner
	config  Config
	logger  *logh.ContextualLogger
}

// New - creates a scheduler over the given backend and command runner
func New(backend Backend, runner CommandRunner, config Config) *Scheduler {

	if config.MutexSettleDelay == 0 {
		config.MutexSettleDelay = 5 * time.Second
	}

	return &Scheduler{
		backend: backend,
		runner:  runner,
		config:  config,
		logger:  logh.CreateContextualLogger(constants.StringsPKG, "scheduler", constants.StringsHost, config.Node),
	}
}

// Run - the whole workflow; a nil return with nothing done just means the
// node is not due yet
func (s *Scheduler) Run() error {

	datacenter, gerr := s.backend.Datacenter()
	if gerr != nil {
		return gerr
	}

	should, err := s.ShouldRun(datacenter)
	if err != nil {
		return err
	}

	if !should {
		return nil
	}

	if gerr := s.Claim(datacenter); gerr != nil {
		return gerr
	}

	return s.RunRepair(datacenter)
}

// ShouldRun - decides whether this node repairs now. A surviving status row
// means a repair is running or completed too recently; then the mutex row
// is raced against the other nodes of the datacenter.
func (s *Scheduler) ShouldRun(datacenter string) (bool, error) {

	status, found, gerr := s.backend.Status(s.config.Node, datacenter)
	if gerr != nil {
		return false, gerr
	}

	if found {
		if logh.InfoEnabled {
			s.logger.Info().Msgf("repair in progress or completed recently: %s", status)
		}
		return false, nil
	}

	statuses, gerr := s.backend.LocalStatuses(datacenter)
	if gerr != nil {
		return false, gerr
	}

	for _, other := range statuses {
		if other.Status != StatusCompleted {
			if logh.InfoEnabled {
				s.logger.Info().Msgf("another node is repairing: %s", other.Node)
			}
			return false, nil
		}
	}

	if gerr := s.backend.InsertMutex(s.config.Node, datacenter, s.config.TTL); gerr != nil {
		return false, gerr
	}

	// let the row settle before trusting the read back
	time.Sleep(s.config.MutexSettleDelay)

	holders, gerr := s.backend.MutexHolders()
	if gerr != nil {
		return false, gerr
	}

	if !s.holdsMutex(holders, datacenter) {
		if logh.InfoEnabled {
			s.logger.Info().Msg("lost the mutex race, backing off")
		}
		if gerr := s.backend.DeleteMutex(s.config.Node, datacenter); gerr != nil {
			opserr.Log(gerr)
		}
		return false, nil
	}

	return true, nil
}

func (s *Scheduler) holdsMutex(holders []MutexRow, datacenter string) bool {

	for _, holder := range holders {
		if holder.Datacenter == datacenter {
			return holder.Node == s.config.Node
		}
	}

	return false
}

// Claim - marks the repair as started and releases the mutex
func (s *Scheduler) Claim(datacenter string) error {

	if gerr := s.backend.SetStatus(s.config.Node, datacenter, StatusStarted, s.config.TTL); gerr != nil {
		return gerr
	}

	return s.backend.DeleteMutex(s.config.Node, datacenter)
}

// RunRepair - asks the range repair tool for its step list, then runs each
// step, publishing the step label as the node's status
func (s *Scheduler) RunRepair(datacenter string) error {

	args := []string{"-D", datacenter, "-H", s.config.Node, "--dry-run"}
	if s.config.LocalOnly {
		args = append(args, "--local")
	}

	if logh.DebugEnabled {
		s.logger.Debug().Msg("getting repair steps, this may take a while")
	}

	out, err := s.runner.Output(s.config.RangeRepairTool, args...)
	if err != nil {
		return errRepairTool("RunRepair", s.config.RangeRepairTool, err)
	}

	for _, step := range parseSteps(out) {

		if gerr := s.backend.SetStatus(s.config.Node, datacenter, step.label, s.config.TTL); gerr != nil {
			if logh.WarnEnabled {
				s.logger.Warn().Err(gerr).Msg("failed to update repair status, continuing anyway")
			}
		}

		// individual repairs may be slow
		if err := s.runner.Shell(step.command); err != nil {
			if logh.WarnEnabled {
				s.logger.Warn().Err(err).Msgf("repair step failed: %s", step.label)
			}
		}
	}

	if gerr := s.backend.SetStatus(s.config.Node, datacenter, StatusCompleted, s.config.TTL); gerr != nil {
		if logh.WarnEnabled {
			s.logger.Warn().Err(gerr).Msg("failed to update repair status, continuing anyway")
		}
	}

	if logh.InfoEnabled {
		s.logger.Info().Msg("repair completed")
	}

	return nil
}

// Reset - clears this node's bookkeeping rows
func (s *Scheduler) Reset(datacenter string) error {

	if gerr := s.backend.DeleteMutex(s.config.Node, datacenter); gerr != nil {
		return gerr
	}

	return s.backend.DeleteStatus(s.config.Node, datacenter)
}

type repairStep struct {
	label   string
	command string
}

// parseSteps - the dry run prints one step per line: a label, a space and
// the command to run
func parseSteps(out []byte) []repairStep {

	var steps []repairStep

	for _, line := range strings.Split(string(out), "\n") {

		line = strings.TrimSpace(line)
		if line == constants.StringsEmpty {
			continue
		}

		parts := strings.SplitN(line, constants.StringsWhitespace, 2)
		if len(parts) != 2 {
			continue
		}

		steps = append(steps, repairStep{label: parts[0], command: parts[1]})
	}

	return steps
}
