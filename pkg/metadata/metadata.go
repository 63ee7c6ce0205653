// Package metadata records launch attempts in a Cassandra cluster so that
// operators can inspect what was started, with which verdict and argument
// vectors, after the fact. Recording is optional and never launch-fatal.
package metadata

import (
	"strconv"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/conf"
	"github.com/McKelvey-Engineering-CSE/clustered-scheduling/pkg/schedule"
)

const (
	metadataKindFlags  = "flags"
	metadataKindLaunch = "launch"
	metadataKindTask   = "task"
)

// Config encodes the settings for connecting to the database.
type Config struct {
	CassandraAddress           string
	CassandraUsername          string
	CassandraPassword          string
	CassandraConnectionTimeout time.Duration
	CassandraSslEnabled        bool
	CassandraSslHostValidation bool
	CassandraSslCAPath         string
	CassandraSslCertPath       string
	CassandraSslKeyPath        string
}

// DefaultConfig returns a setup which uses a Cassandra cluster running on
// localhost without any authentication or encryption.
func DefaultConfig() Config {
	return Config{
		CassandraAddress: "127.0.0.1",
	}
}

// ConfigFromFlags applies the Cassandra settings from the command line flags
// and environment variables.
func ConfigFromFlags() Config {
	return Config{
		CassandraAddress:           conf.CassandraAddress.Value(),
		CassandraUsername:          conf.CassandraUsername.Value(),
		CassandraPassword:          conf.CassandraPassword.Value(),
		CassandraConnectionTimeout: conf.CassandraConnectionTimeout.Value(),
		CassandraSslEnabled:        conf.CassandraSslEnabled.Value(),
		CassandraSslHostValidation: conf.CassandraSslHostValidation.Value(),
		CassandraSslCAPath:         conf.CassandraSslCAPath.Value(),
		CassandraSslCertPath:       conf.CassandraSslCertPath.Value(),
		CassandraSslKeyPath:        conf.CassandraSslKeyPath.Value(),
	}
}

// Map encodes the key value pairs to be stored in Cassandra.
type Map map[string]string

// Store keeps the Cassandra session alive, holds the active configuration and
// the launch id to tag the metadata with.
type Store struct {
	launchID string
	config   Config
	session  *gocql.Session
}

// NewStore returns the Store helper from a launch id and configuration.
// Connect() still needs to be called to get an active Cassandra session.
func NewStore(launchID string, config Config) *Store {
	return &Store{
		launchID: launchID,
		config:   config,
	}
}

func sslOptions(config Config) *gocql.SslOptions {
	sslOptions := &gocql.SslOptions{
		EnableHostVerification: config.CassandraSslHostValidation,
	}

	if config.CassandraSslCAPath != "" {
		sslOptions.CaPath = config.CassandraSslCAPath
	}

	if config.CassandraSslCertPath != "" {
		sslOptions.CertPath = config.CassandraSslCertPath
	}

	if config.CassandraSslKeyPath != "" {
		sslOptions.KeyPath = config.CassandraSslKeyPath
	}

	return sslOptions
}

// Connect creates a session to the Cassandra cluster. This function should
// only be called once.
func (s *Store) Connect() error {
	cluster := gocql.NewCluster(s.config.CassandraAddress)

	cluster.Consistency = gocql.LocalOne
	cluster.SerialConsistency = gocql.LocalSerial

	cluster.ProtoVersion = 4
	cluster.Timeout = s.config.CassandraConnectionTimeout

	if s.config.CassandraUsername != "" && s.config.CassandraPassword != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: s.config.CassandraUsername,
			Password: s.config.CassandraPassword,
		}
	}

	if s.config.CassandraSslEnabled {
		cluster.SslOpts = sslOptions(s.config)
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return err
	}

	s.session = session

	if err := session.Query("CREATE KEYSPACE IF NOT EXISTS rtgomp WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': 1};").Exec(); err != nil {
		return err
	}

	// NOTE: Schema consistency check is ignored by CREATE queries. To ensure
	// schema consistency we perform a simple SELECT on 'system_schema.keyspaces'.
	if err = session.Query("SELECT * FROM system_schema.keyspaces;").Exec(); err != nil {
		return err
	}

	if err = session.Query("CREATE TABLE IF NOT EXISTS rtgomp.launches (launch_id text, kind text, time timestamp, timeuuid TIMEUUID, metadata map<text,text>, PRIMARY KEY ((launch_id), timeuuid),) WITH CLUSTERING ORDER BY (timeuuid DESC);").Exec(); err != nil {
		return err
	}

	// NOTE: Same issue as above.
	if err = session.Query("SELECT * FROM system_schema.keyspaces;").Exec(); err != nil {
		return err
	}

	return nil
}

func (s *Store) storeMap(metadata Map, kind string) error {
	return s.session.Query(`INSERT INTO rtgomp.launches (launch_id, kind, time, timeuuid, metadata) VALUES (?, ?, ?, ?, ?)`,
		s.launchID, kind, time.Now(), gocql.TimeUUID(), metadata).Exec()
}

// RecordFlags saves the whole flags based configuration in the metadata
// information.
func (s *Store) RecordFlags() error {
	metadata := conf.GetFlags()
	return s.storeMap(metadata, metadataKindFlags)
}

// RecordLaunch stores one row describing the launch and one row per task of
// the parsed schedule.
func (s *Store) RecordLaunch(base string, doc *schedule.Document) error {
	launch := Map{
		"base":           base,
		"schedulability": strconv.Itoa(int(doc.Schedulability)),
		"core_range":     doc.CoreRange,
		"task_count":     strconv.Itoa(len(doc.Tasks)),
	}
	if err := s.storeMap(launch, metadataKindLaunch); err != nil {
		return err
	}

	for i, task := range doc.Tasks {
		record := Map{
			"index":     strconv.Itoa(i + 1),
			"program":   task.Program,
			"args":      strings.Join(task.Args, " "),
			"timing":    strings.Join(task.Timing, " "),
			"partition": strings.Join(task.Partition, " "),
		}
		if err := s.storeMap(record, metadataKindTask); err != nil {
			return err
		}
	}

	return nil
}

// GetKind retrieves the single metadata map of the given kind stored for the
// launch id. Returns an error if no map or more than one map was found.
func (s *Store) GetKind(kind string) (Map, error) {
	var metadata Map

	maps := []Map{}

	iter := s.session.Query(`SELECT metadata FROM rtgomp.launches WHERE launch_id = ? AND kind = ? ALLOW FILTERING`, s.launchID, kind).Iter()
	for iter.Scan(&metadata) {
		maps = append(maps, metadata)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	// Make sure that only one map within the launch exists.
	if len(maps) != 1 {
		return nil, errors.Errorf("cannot retrieve metadata for launch ID %q and %q kind", s.launchID, kind)
	}

	return maps[0], nil
}
