package monitor

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/uol/funks"
	"github.com/uol/gobol"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
	"github.com/casstools/casstools/lib/mx4j"
)

//
// The casstop collection engine. Each cycle polls a fixed set of mbeans on
// every node and renders one row per node; counters are turned into rates
// against the previous cycle.
//

// mbeans polled each cycle
const (
	beanStorageService    = "org.apache.cassandra.db:type=StorageService"
	beanCompactionManager = "org.apache.cassandra.db:type=CompactionManager"
	beanStorageProxy      = "org.apache.cassandra.db:type=StorageProxy"
	beanReadStage         = "org.apache.cassandra.request:type=ReadStage"
	beanMutationStage     = "org.apache.cassandra.request:type=MutationStage"
	beanAntiEntropy       = "org.apache.cassandra.internal:type=AntiEntropySessions"
)

// Settings - casstop configuration, flag or TOML provided
type Settings struct {
	MX4JPort     int
	PollInterval funks.Duration
	HTTPTimeout  funks.Duration
}

// DefaultSettings - flag defaults, overridden by the optional config file
func DefaultSettings() *Settings {

	return &Settings{
		MX4JPort:     8081,
		PollInterval: funks.Duration{Duration: 5 * time.Second},
		HTTPTimeout:  funks.Duration{Duration: 3 * time.Second},
	}
}

// Fetcher - the slice of the mx4j client the monitor needs
type Fetcher interface {
	Node() string
	MBean(objectName string) (mx4j.Attributes, gobol.Error)
}

// Snapshot - one node's metrics from a single poll
type Snapshot struct {
	Node               string
	When               time.Time
	Up                 bool
	Load               string
	OperationMode      string
	PendingCompactions int64
	ReadActive         int64
	ReadPending        int64
	WriteActive        int64
	WritePending       int64
	RepairSessions     int64
	ReadOps            int64
	WriteOps           int64
	ReadLatencyMicros  float64
	WriteLatencyMicros float64
}

// Row - a display row; rates come from the previous cycle's counters
type Row struct {
	Snapshot
	ReadRate  float64
	WriteRate float64
}

// Monitor - polls a set of nodes, keeping the previous cycle for rates
type Monitor struct {
	clients []Fetcher
	prev    map[string]Snapshot
	logger  *logh.ContextualLogger
}

// New - creates a monitor over the given node clients
func New(clients ...Fetcher) *Monitor {

	return &Monitor{
		clients: clients,
		prev:    map[string]Snapshot{},
		logger:  logh.CreateContextualLogger(constants.StringsPKG, "monitor"),
	}
}

// Poll - collects one cycle from every node
func (m *Monitor) Poll() []Row {

	rows := make([]Row, 0, len(m.clients))

	for _, client := range m.clients {

		snap := m.collect(client)
		row := Row{Snapshot: snap, ReadRate: math.NaN(), WriteRate: math.NaN()}

		if prev, ok := m.prev[snap.Node]; ok && snap.Up && prev.Up {
			row.ReadRate, row.WriteRate = rates(prev, snap)
		}

		m.prev[snap.Node] = snap
		rows = append(rows, row)
	}

	return rows
}

// Up - true when at least one node answered in the given cycle
func Up(rows []Row) bool {

	for _, row := range rows {
		if row.Up {
			return true
		}
	}

	return false
}

func (m *Monitor) collect(client Fetcher) Snapshot {

	snap := Snapshot{Node: client.Node(), When: time.Now()}

	storage, gerr := client.MBean(beanStorageService)
	if gerr != nil {
		if logh.WarnEnabled {
			m.logger.Warn().Str(constants.StringsHost, snap.Node).Err(gerr).Msg("node down, skipping")
		}
		return snap
	}

	snap.Up = true
	snap.Load = storage["Load"]
	snap.OperationMode = storage["OperationMode"]

	if attrs, gerr := client.MBean(beanCompactionManager); gerr == nil {
		snap.PendingCompactions, _ = attrs.Int64("PendingTasks")
	}

	if attrs, gerr := client.MBean(beanReadStage); gerr == nil {
		snap.ReadActive, _ = attrs.Int64("ActiveCount")
		snap.ReadPending, _ = attrs.Int64("PendingTasks")
	}

	if attrs, gerr := client.MBean(beanMutationStage); gerr == nil {
		snap.WriteActive, _ = attrs.Int64("ActiveCount")
		snap.WritePending, _ = attrs.Int64("PendingTasks")
	}

	// absent on older releases, zero is fine
	if attrs, gerr := client.MBean(beanAntiEntropy); gerr == nil {
		snap.RepairSessions, _ = attrs.Int64("ActiveCount")
	}

	if attrs, gerr := client.MBean(beanStorageProxy); gerr == nil {
		snap.ReadOps, _ = attrs.Int64("ReadOperations")
		snap.WriteOps, _ = attrs.Int64("WriteOperations")
		snap.ReadLatencyMicros, _ = attrs.Float64("RecentReadLatencyMicros")
		snap.WriteLatencyMicros, _ = attrs.Float64("RecentWriteLatencyMicros")
	}

	return snap
}

// rates - counter deltas per second between two cycles
func rates(prev, cur Snapshot) (float64, float64) {

	elapsed := cur.When.Sub(prev.When).Seconds()
	if elapsed <= 0 {
		return math.NaN(), math.NaN()
	}

	read := float64(cur.ReadOps-prev.ReadOps) / elapsed
	write := float64(cur.WriteOps-prev.WriteOps) / elapsed

	if read < 0 {
		read = math.NaN()
	}
	if write < 0 {
		write = math.NaN()
	}

	return read, write
}

const (
	lineFormatHdr  = "%-30s %12s %10s %9s %9s %7s %7s %7s %7s %8s %8s\n"
	lineFormat     = "%-30s %12s %10s %9s %9s %7d %7d %7d %7d %8.2f %8.2f\n"
	lineFormatDown = "%-30s %12s\n"
)

// Header - the column header line
func Header() string {
	return fmt.Sprintf(lineFormatHdr,
		"Host", "Mode", "Load", "Reads/s", "Writes/s",
		"RdPend", "WrPend", "Compact", "Repair", "RdLatMs", "WrLatMs")
}

// FormatRow - one node as a fixed width line
func FormatRow(row Row) string {

	if !row.Up {
		return fmt.Sprintf(lineFormatDown, row.Node, "DOWN")
	}

	return fmt.Sprintf(lineFormat,
		row.Node,
		row.OperationMode,
		row.Load,
		formatRate(row.ReadRate),
		formatRate(row.WriteRate),
		row.ReadPending,
		row.WritePending,
		row.PendingCompactions,
		row.RepairSessions,
		row.ReadLatencyMicros/1000.0,
		row.WriteLatencyMicros/1000.0,
	)
}

// FormatRows - header plus one line per node
func FormatRows(rows []Row) string {

	var sb strings.Builder
	sb.WriteString(Header())
	for _, row := range rows {
		sb.WriteString(FormatRow(row))
	}

	return sb.String()
}

func formatRate(rate float64) string {

	if math.IsNaN(rate) {
		return "-"
	}

	return fmt.Sprintf("%.1f", rate)
}
