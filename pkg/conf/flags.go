package conf

import "time"

// CassandraAddress represents cassandra address flag. The default "none"
// disables launch metadata recording entirely.
var CassandraAddress = NewStringFlag("cassandra_addr", "Address of Cassandra DB endpoint for launch metadata ('none' disables recording)", "none")

// CassandraUsername holds the user name which will be presented when connecting to the cluster.
var CassandraUsername = NewStringFlag("cassandra_username", "The user name which will be presented when connecting to the cluster", "")

// CassandraPassword holds the password which will be presented when connecting to the cluster.
var CassandraPassword = NewStringFlag("cassandra_password", "The password which will be presented when connecting to the cluster", "")

// CassandraConnectionTimeout encodes the initial connection timeout.
var CassandraConnectionTimeout = NewDurationFlag("cassandra_timeout", "Initial connection timeout, used during initial dial to server", 0*time.Second)

// CassandraSslEnabled determines whether the connection shall use TLS.
var CassandraSslEnabled = NewBoolFlag("cassandra_ssl", "Determines whether the cassandra connection is encrypted", false)

// CassandraSslHostValidation determines whether the server certificate chain and host name shall be verified.
var CassandraSslHostValidation = NewBoolFlag("cassandra_ssl_host_validation", "Determines whether the cassandra server certificate is validated", false)

// CassandraSslCAPath points to the CA certificate used to validate the server certificate.
var CassandraSslCAPath = NewStringFlag("cassandra_ssl_ca_path", "Path to the CA certificate used to validate the cassandra server", "")

// CassandraSslCertPath points to the client certificate.
var CassandraSslCertPath = NewStringFlag("cassandra_ssl_cert_path", "Path to the client certificate presented to cassandra", "")

// CassandraSslKeyPath points to the client key.
var CassandraSslKeyPath = NewStringFlag("cassandra_ssl_key_path", "Path to the client key presented to cassandra", "")
