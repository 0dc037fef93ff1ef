package repairs

import (
	"errors"
	"net/http"

	"github.com/uol/gobol"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
	"github.com/casstools/casstools/lib/mx4j"
	"github.com/casstools/casstools/lib/opserr"
)

//
// Terminates anti-entropy repairs on a set of nodes: active repair sessions
// through StorageService and their validation compactions through the
// CompactionManager. Nodes that cannot be reached are logged and skipped.
//

const (
	beanStorageService    = "org.apache.cassandra.db:type=StorageService"
	beanCompactionManager = "org.apache.cassandra.db:type=CompactionManager"
	beanAntiEntropy       = "org.apache.cassandra.internal:type=AntiEntropySessions"

	opTerminateRepairs = "forceTerminateAllRepairSessions"
	opStopCompaction   = "stopCompaction"

	compactionTypeValidation = "VALIDATION"
)

// Bridge - the slice of the mx4j client the killer needs
type Bridge interface {
	Node() string
	MBean(objectName string) (mx4j.Attributes, gobol.Error)
	Invoke(objectName, operation string, args ...mx4j.Arg) gobol.Error
}

// Killer - stops repairs across a set of nodes
type Killer struct {
	clients []Bridge
	dryRun  bool
	logger  *logh.ContextualLogger
}

// New - creates a killer over the given node clients
func New(dryRun bool, clients ...Bridge) *Killer {

	return &Killer{
		clients: clients,
		dryRun:  dryRun,
		logger:  logh.CreateContextualLogger(constants.StringsPKG, "repairs"),
	}
}

// Run - stops repairs on every reachable node, returning how many nodes
// were handled; an error means every node failed
func (k *Killer) Run() (int, gobol.Error) {

	handled := 0

	for _, client := range k.clients {

		if gerr := k.stopNode(client); gerr != nil {
			opserr.Log(gerr)
			continue
		}

		handled++
	}

	if handled == 0 && len(k.clients) > 0 {
		message := "no node could be reached"
		return 0, opserr.New(errors.New(message), message, "repairs", "Run", http.StatusServiceUnavailable)
	}

	return handled, nil
}

func (k *Killer) stopNode(client Bridge) gobol.Error {

	attrs, gerr := client.MBean(beanAntiEntropy)
	if gerr != nil {
		return gerr
	}

	sessions, _ := attrs.Int64("ActiveCount")
	pending, _ := attrs.Int64("PendingTasks")

	if logh.InfoEnabled {
		k.logger.Info().
			Str(constants.StringsHost, client.Node()).
			Int64("active", sessions).
			Int64("pending", pending).
			Msg("anti-entropy sessions found")
	}

	if k.dryRun {
		if logh.InfoEnabled {
			k.logger.Info().Str(constants.StringsHost, client.Node()).Msg("dry run, nothing terminated")
		}
		return nil
	}

	if gerr := client.Invoke(beanStorageService, opTerminateRepairs); gerr != nil {
		return gerr
	}

	if gerr := client.Invoke(beanCompactionManager, opStopCompaction, mx4j.StringArg(compactionTypeValidation)); gerr != nil {
		return gerr
	}

	if logh.InfoEnabled {
		k.logger.Info().Str(constants.StringsHost, client.Node()).Msg("repair sessions terminated")
	}

	return nil
}
