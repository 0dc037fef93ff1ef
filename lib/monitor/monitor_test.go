package monitor

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uol/gobol"

	"github.com/casstools/casstools/lib/mx4j"
	"github.com/casstools/casstools/lib/opserr"
)

type fakeNode struct {
	node  string
	beans map[string]mx4j.Attributes
	down  bool
}

func (f *fakeNode) Node() string {
	return f.node
}

func (f *fakeNode) MBean(objectName string) (mx4j.Attributes, gobol.Error) {

	if f.down {
		return nil, opserr.New(errors.New("connection refused"), "node is unreachable", "mx4j", "MBean", http.StatusServiceUnavailable)
	}

	attrs, ok := f.beans[objectName]
	if !ok {
		return nil, opserr.New(errors.New("no such mbean"), "no such mbean", "mx4j", "MBean", http.StatusNotFound)
	}

	return attrs, nil
}

func healthyNode(name string) *fakeNode {

	return &fakeNode{
		node: name,
		beans: map[string]mx4j.Attributes{
			beanStorageService:    {"Load": "120.52 GB", "OperationMode": "NORMAL"},
			beanCompactionManager: {"PendingTasks": "3"},
			beanReadStage:         {"ActiveCount": "1", "PendingTasks": "7"},
			beanMutationStage:     {"ActiveCount": "2", "PendingTasks": "9"},
			beanAntiEntropy:       {"ActiveCount": "1"},
			beanStorageProxy: {
				"ReadOperations":           "1000",
				"WriteOperations":          "5000",
				"RecentReadLatencyMicros":  "1500.5",
				"RecentWriteLatencyMicros": "250.0",
			},
		},
	}
}

func TestCollectMapsDocumentedFields(t *testing.T) {

	m := New(healthyNode("cass01"))
	rows := m.Poll()

	assert.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.Up)
	assert.Equal(t, "cass01", row.Node)
	assert.Equal(t, "120.52 GB", row.Load)
	assert.Equal(t, "NORMAL", row.OperationMode)
	assert.Equal(t, int64(3), row.PendingCompactions)
	assert.Equal(t, int64(7), row.ReadPending)
	assert.Equal(t, int64(9), row.WritePending)
	assert.Equal(t, int64(1), row.RepairSessions)
	assert.Equal(t, int64(1000), row.ReadOps)
	assert.Equal(t, 1500.5, row.ReadLatencyMicros)

	// no previous cycle, no rates
	assert.True(t, math.IsNaN(row.ReadRate))
	assert.True(t, math.IsNaN(row.WriteRate))
}

func TestRatesBetweenCycles(t *testing.T) {

	prev := Snapshot{Up: true, When: time.Unix(100, 0), ReadOps: 1000, WriteOps: 5000}
	cur := Snapshot{Up: true, When: time.Unix(110, 0), ReadOps: 1500, WriteOps: 5250}

	readRate, writeRate := rates(prev, cur)
	assert.Equal(t, 50.0, readRate)
	assert.Equal(t, 25.0, writeRate)

	// counter reset after a node restart yields no rate
	readRate, _ = rates(cur, Snapshot{Up: true, When: time.Unix(120, 0), ReadOps: 10, WriteOps: 6000})
	assert.True(t, math.IsNaN(readRate))
}

func TestPollComputesRatesOnSecondCycle(t *testing.T) {

	node := healthyNode("cass01")
	m := New(node)

	m.Poll()

	// bump the counters and backdate the stored cycle
	node.beans[beanStorageProxy]["ReadOperations"] = "2000"
	snap := m.prev["cass01"]
	snap.When = snap.When.Add(-10 * time.Second)
	m.prev["cass01"] = snap

	rows := m.Poll()
	assert.InDelta(t, 100.0, rows[0].ReadRate, 1.0)
}

func TestDownNodeKeepsOthersGoing(t *testing.T) {

	m := New(&fakeNode{node: "cass01", down: true}, healthyNode("cass02"))

	rows := m.Poll()
	assert.Len(t, rows, 2)
	assert.False(t, rows[0].Up)
	assert.True(t, rows[1].Up)
	assert.True(t, Up(rows))

	out := FormatRows(rows)
	assert.Contains(t, out, "DOWN")
	assert.Contains(t, out, "NORMAL")
}

func TestAllNodesDown(t *testing.T) {

	m := New(&fakeNode{node: "cass01", down: true})
	rows := m.Poll()
	assert.False(t, Up(rows))
}

func TestMissingOptionalBeans(t *testing.T) {

	node := healthyNode("cass01")
	delete(node.beans, beanAntiEntropy)
	delete(node.beans, beanStorageProxy)

	rows := New(node).Poll()
	assert.True(t, rows[0].Up)
	assert.Equal(t, int64(0), rows[0].RepairSessions)
}

func TestFormatRowsHeader(t *testing.T) {

	out := FormatRows(nil)
	assert.True(t, strings.HasPrefix(out, "Host"))
	assert.Contains(t, out, "Reads/s")
}
