package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/uol/funks"
	"github.com/uol/gobol"
	"github.com/uol/logh"

	"github.com/casstools/casstools/lib/constants"
)

//
// Cassandra implementation of the bookkeeping backend. The schema lives in
// its own keyspace and is created on first use, replicated to every
// datacenter the cluster knows about.
//

// Settings - bookkeeping cluster connection settings
type Settings struct {
	Host       string
	Port       int
	Keyspace   string
	Username   string
	Password   string
	CQLVersion string
	Timeout    funks.Duration
}

const (
	cqlGetStatus      = `SELECT repair_status FROM repair_status WHERE nodename = ? AND data_center = ?`
	cqlGetLocalStatus = `SELECT nodename, repair_status, WRITETIME(repair_status) FROM repair_status WHERE data_center = ? ALLOW FILTERING`
	cqlGetAllStatus   = `SELECT nodename, data_center, repair_status, WRITETIME(repair_status) FROM repair_status`

	cqlMutexStart   = `INSERT INTO mutex (nodename, data_center) VALUES (?, ?) USING TTL ?`
	cqlMutexCheck   = `SELECT nodename, data_center FROM mutex`
	cqlMutexCleanup = `DELETE FROM mutex WHERE nodename = ? AND data_center = ?`

	cqlRepairUpdate  = `UPDATE repair_status USING TTL ? SET repair_status = ? WHERE nodename = ? AND data_center = ?`
	cqlRepairCleanup = `DELETE FROM repair_status WHERE nodename = ? AND data_center = ?`

	cqlSelectPeerDatacenters = `SELECT data_center FROM system.peers`
	cqlSelectLocalDatacenter = `SELECT data_center FROM system.local`
)

var schemaTables = []string{
	`CREATE TABLE IF NOT EXISTS "%s".mutex (
		nodename varchar,
		data_center varchar,
		PRIMARY KEY ((nodename), data_center))
	 WITH comment='Poor MUTEX implementation'`,
	`CREATE TABLE IF NOT EXISTS "%s".repair_status (
		nodename varchar,
		data_center varchar,
		repair_status varchar,
		PRIMARY KEY ((nodename), data_center))
	 WITH comment='Repair status of each node'`,
}

type cassandraBackend struct {
	session *gocql.Session
	logger  *logh.ContextualLogger
}

// NewCassandraBackend - connects to the bookkeeping keyspace, creating the
// schema through the system keyspace when it does not exist yet
func NewCassandraBackend(settings *Settings) (Backend, gobol.Error) {

	logger := logh.CreateContextualLogger(constants.StringsPKG, "scheduler")

	session, err := connect(settings, settings.Keyspace)
	if err != nil {

		if logh.InfoEnabled {
			logger.Info().Err(err).Msg("bookkeeping keyspace not reachable, creating schema")
		}

		if gerr := createSchema(settings, logger); gerr != nil {
			return nil, gerr
		}

		session, err = connect(settings, settings.Keyspace)
		if err != nil {
			return nil, errConnect("NewCassandraBackend", settings.Keyspace, err)
		}
	}

	return &cassandraBackend{
		session: session,
		logger:  logger,
	}, nil
}

func connect(settings *Settings, keyspace string) (*gocql.Session, error) {

	cluster := gocql.NewCluster(settings.Host)
	cluster.Port = settings.Port
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.ProtoVersion = 4

	if settings.CQLVersion != constants.StringsEmpty {
		cluster.CQLVersion = settings.CQLVersion
	}

	if settings.Timeout.Duration > 0 {
		cluster.Timeout = settings.Timeout.Duration
	}

	if settings.Username != constants.StringsEmpty {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: settings.Username,
			Password: settings.Password,
		}
	}

	return cluster.CreateSession()
}

// createSchema - builds the bookkeeping keyspace replicated to every known
// datacenter; refuses to bother on a single node cluster
func createSchema(settings *Settings, logger *logh.ContextualLogger) gobol.Error {

	session, err := connect(settings, "system")
	if err != nil {
		return errConnect("createSchema", "system", err)
	}
	defer session.Close()

	datacenters := map[string]bool{}

	var datacenter string
	iter := session.Query(cqlSelectPeerDatacenters).Iter()
	for iter.Scan(&datacenter) {
		datacenters[datacenter] = true
	}
	if err := iter.Close(); err != nil {
		return errQuery("createSchema", err)
	}

	if len(datacenters) == 0 {
		return errSingleNodeCluster("createSchema")
	}

	if err := session.Query(cqlSelectLocalDatacenter).Scan(&datacenter); err != nil {
		return errQuery("createSchema", err)
	}
	datacenters[datacenter] = true

	names := make([]string, 0, len(datacenters))
	for name := range datacenters {
		names = append(names, name)
	}
	sort.Strings(names)

	if logh.InfoEnabled {
		logger.Info().Msgf("creating keyspace %s over datacenters %s", settings.Keyspace, strings.Join(names, ","))
	}

	if err := session.Query(keyspaceDDL(settings.Keyspace, names)).Exec(); err != nil {
		return errSchema("createSchema", err)
	}

	for _, table := range schemaTables {
		if err := session.Query(fmt.Sprintf(table, settings.Keyspace)).Exec(); err != nil {
			return errSchema("createSchema", err)
		}
	}

	return nil
}

// keyspaceDDL - the keyspace name is quoted so mixed case survives
func keyspaceDDL(keyspace string, datacenters []string) string {

	replication := make([]string, len(datacenters))
	for i, name := range datacenters {
		replication[i] = fmt.Sprintf("'%s':3", name)
	}

	return fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS "%s"
		 WITH replication = {'class':'NetworkTopologyStrategy', %s}
		 AND durable_writes = false`,
		keyspace,
		strings.Join(replication, ", "),
	)
}

func (backend *cassandraBackend) Datacenter() (string, gobol.Error) {

	var datacenter string
	if err := backend.session.Query(cqlSelectLocalDatacenter).Scan(&datacenter); err != nil {
		return constants.StringsEmpty, errQuery("Datacenter", err)
	}

	return datacenter, nil
}

func (backend *cassandraBackend) Status(node, datacenter string) (string, bool, gobol.Error) {

	var status string
	err := backend.session.Query(cqlGetStatus, node, datacenter).Scan(&status)
	if err == gocql.ErrNotFound {
		return constants.StringsEmpty, false, nil
	}
	if err != nil {
		return constants.StringsEmpty, false, errQuery("Status", err)
	}

	return status, true, nil
}

func (backend *cassandraBackend) LocalStatuses(datacenter string) ([]NodeStatus, gobol.Error) {

	var statuses []NodeStatus
	var current NodeStatus
	var writetime int64

	iter := backend.session.Query(cqlGetLocalStatus, datacenter).Iter()
	for iter.Scan(&current.Node, &current.Status, &writetime) {
		current.Datacenter = datacenter
		current.UpdatedAt = writetimeToTime(writetime)
		statuses = append(statuses, current)
	}
	if err := iter.Close(); err != nil {
		return nil, errQuery("LocalStatuses", err)
	}

	return statuses, nil
}

func (backend *cassandraBackend) AllStatuses() ([]NodeStatus, gobol.Error) {

	var statuses []NodeStatus
	var current NodeStatus
	var writetime int64

	iter := backend.session.Query(cqlGetAllStatus).Consistency(gocql.One).Iter()
	for iter.Scan(&current.Node, &current.Datacenter, &current.Status, &writetime) {
		current.UpdatedAt = writetimeToTime(writetime)
		statuses = append(statuses, current)
	}
	if err := iter.Close(); err != nil {
		return nil, errQuery("AllStatuses", err)
	}

	return statuses, nil
}

func (backend *cassandraBackend) InsertMutex(node, datacenter string, ttl int) gobol.Error {

	if err := backend.session.Query(cqlMutexStart, node, datacenter, ttl).Exec(); err != nil {
		return errQuery("InsertMutex", err)
	}

	return nil
}

func (backend *cassandraBackend) MutexHolders() ([]MutexRow, gobol.Error) {

	var holders []MutexRow
	var current MutexRow

	iter := backend.session.Query(cqlMutexCheck).Consistency(gocql.One).Iter()
	for iter.Scan(&current.Node, &current.Datacenter) {
		holders = append(holders, current)
	}
	if err := iter.Close(); err != nil {
		return nil, errQuery("MutexHolders", err)
	}

	return holders, nil
}

func (backend *cassandraBackend) DeleteMutex(node, datacenter string) gobol.Error {

	if err := backend.session.Query(cqlMutexCleanup, node, datacenter).Exec(); err != nil {
		return errQuery("DeleteMutex", err)
	}

	return nil
}

func (backend *cassandraBackend) SetStatus(node, datacenter, status string, ttl int) gobol.Error {

	if err := backend.session.Query(cqlRepairUpdate, ttl, status, node, datacenter).Exec(); err != nil {
		return errQuery("SetStatus", err)
	}

	return nil
}

func (backend *cassandraBackend) DeleteStatus(node, datacenter string) gobol.Error {

	if err := backend.session.Query(cqlRepairCleanup, node, datacenter).Exec(); err != nil {
		return errQuery("DeleteStatus", err)
	}

	return nil
}

func (backend *cassandraBackend) Close() {
	backend.session.Close()
}

// writetimeToTime - WRITETIME returns microseconds since the epoch
func writetimeToTime(writetime int64) time.Time {
	return time.Unix(0, writetime*int64(time.Microsecond))
}
