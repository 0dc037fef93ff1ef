package scheduler

import (
	"time"

	"github.com/uol/gobol"
)

// repair status values written to the bookkeeping table
const (
	StatusStarted   = "Started"
	StatusCompleted = "Completed"
)

// NodeStatus - one repair_status row
type NodeStatus struct {
	Node       string    `json:"nodename"`
	Datacenter string    `json:"data_center"`
	Status     string    `json:"repair_status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MutexRow - one mutex row
type MutexRow struct {
	Node       string
	Datacenter string
}

// Backend hides the bookkeeping storage consulted by the scheduler. Rows
// carry a TTL: an absent status row means the node is due for repair.
type Backend interface {
	// Datacenter should return the datacenter of the connected node
	Datacenter() (string, gobol.Error)

	// Status should return this node's status row, if it has not expired
	Status(node, datacenter string) (string, bool, gobol.Error)

	// LocalStatuses should return the status rows of one datacenter
	LocalStatuses(datacenter string) ([]NodeStatus, gobol.Error)

	// AllStatuses should return every status row in the cluster
	AllStatuses() ([]NodeStatus, gobol.Error)

	// InsertMutex should write this node's mutex row with the given TTL
	InsertMutex(node, datacenter string, ttl int) gobol.Error

	// MutexHolders should return every mutex row, in storage order
	MutexHolders() ([]MutexRow, gobol.Error)

	// DeleteMutex should drop this node's mutex row
	DeleteMutex(node, datacenter string) gobol.Error

	// SetStatus should write this node's status row with the given TTL
	SetStatus(node, datacenter, status string, ttl int) gobol.Error

	// DeleteStatus should drop this node's status row
	DeleteStatus(node, datacenter string) gobol.Error

	// Close should shut the connection down
	Close()
}
