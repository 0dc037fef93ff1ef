package repairs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uol/gobol"

	"github.com/casstools/casstools/lib/mx4j"
	"github.com/casstools/casstools/lib/opserr"
)

type fakeBridge struct {
	node    string
	down    bool
	invokes []string
}

func (f *fakeBridge) Node() string {
	return f.node
}

func (f *fakeBridge) MBean(objectName string) (mx4j.Attributes, gobol.Error) {

	if f.down {
		return nil, opserr.New(errors.New("connection refused"), "node is unreachable", "mx4j", "MBean", http.StatusServiceUnavailable)
	}

	return mx4j.Attributes{"ActiveCount": "2", "PendingTasks": "1"}, nil
}

func (f *fakeBridge) Invoke(objectName, operation string, args ...mx4j.Arg) gobol.Error {

	if f.down {
		return opserr.New(errors.New("connection refused"), "node is unreachable", "mx4j", "Invoke", http.StatusServiceUnavailable)
	}

	call := fmt.Sprintf("%s:%s", objectName, operation)
	for _, arg := range args {
		call += ":" + arg.Value
	}
	f.invokes = append(f.invokes, call)

	return nil
}

func TestKillerTerminatesRepairs(t *testing.T) {

	node := &fakeBridge{node: "cass01"}

	handled, gerr := New(false, node).Run()
	assert.Nil(t, gerr)
	assert.Equal(t, 1, handled)

	assert.Equal(t, []string{
		beanStorageService + ":" + opTerminateRepairs,
		beanCompactionManager + ":" + opStopCompaction + ":" + compactionTypeValidation,
	}, node.invokes)
}

func TestKillerDryRun(t *testing.T) {

	node := &fakeBridge{node: "cass01"}

	handled, gerr := New(true, node).Run()
	assert.Nil(t, gerr)
	assert.Equal(t, 1, handled)
	assert.Empty(t, node.invokes)
}

func TestKillerSkipsDownNodes(t *testing.T) {

	down := &fakeBridge{node: "cass01", down: true}
	up := &fakeBridge{node: "cass02"}

	handled, gerr := New(false, down, up).Run()
	assert.Nil(t, gerr)
	assert.Equal(t, 1, handled)
	assert.Len(t, up.invokes, 2)
}

func TestKillerAllNodesDown(t *testing.T) {

	handled, gerr := New(false, &fakeBridge{node: "cass01", down: true}, &fakeBridge{node: "cass02", down: true}).Run()
	assert.NotNil(t, gerr)
	assert.Equal(t, 0, handled)
	assert.Equal(t, http.StatusServiceUnavailable, gerr.StatusCode())
}
