package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWritetimeToTime(t *testing.T) {

	// WRITETIME is microseconds since the epoch
	assert.Equal(t, time.Unix(1400000000, 0).UTC(), writetimeToTime(1400000000000000).UTC())
	assert.Equal(t, time.Unix(0, 0).UTC(), writetimeToTime(0).UTC())
}

func TestSchemaDDLQuotesKeyspace(t *testing.T) {

	ddl := keyspaceDDL("Operations", []string{"dc1", "dc2"})

	// unquoted identifiers are lowercased by Cassandra
	assert.Contains(t, ddl, `CREATE KEYSPACE IF NOT EXISTS "Operations"`)
	assert.Contains(t, ddl, "'dc1':3, 'dc2':3")
	assert.Contains(t, ddl, "durable_writes = false")

	for _, table := range schemaTables {
		assert.Contains(t, fmt.Sprintf(table, "Operations"), `"Operations".`)
	}
}
