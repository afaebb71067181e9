// Package database contains the logic for establishing
// the connection to the MongoDB deployment holding listings.
//
// It handles:
//   - validating the connection string and resolving the database name
//   - creating the single shared *mongo.Client
//   - wiring driver command logging into zerolog (local env)
//   - optional New Relic instrumentation (nrmongo)
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/listings-api/internal/config"
	loggerConfig "github.com/deppfellow/listings-api/internal/logger"
	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabaseName is used when neither the config nor the connection
// string names a database.
const DefaultDatabaseName = "sample_airbnb"

// ConnectionError reports a startup failure to reach the store. It is fatal:
// the process must not start serving requests.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Database wraps the shared client and the listings collection handle.
type Database struct {
	Client   *mongo.Client
	Listings *mongo.Collection
	log      *zerolog.Logger
}

// New connects to MongoDB and pings the primary, so startup fails fast when
// the connection string is invalid or the deployment is unreachable.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	cs, err := connstring.ParseAndValidate(cfg.Database.URI)
	if err != nil {
		return nil, &ConnectionError{Op: "parse connection string", Err: err}
	}

	name := ResolveName(cfg.Database.Name, cs.Database)

	clientOptions := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(cfg.Database.ConnectTimeout).
		SetServerSelectionTimeout(cfg.Database.ConnectTimeout)

	// nrmongo reports each command as a datastore segment on the current
	// New Relic transaction.
	if loggerService.GetApplication() != nil {
		clientOptions.SetMonitor(nrmongo.NewCommandMonitor(nil))
	}

	// Driver command logging is very noisy, which is why it's only in local.
	if cfg.Primary.Env == "local" {
		sink := NewLogSink(logger, cfg.Observability.Logging.SlowQueryThreshold)
		clientOptions.SetLoggerOptions(options.Logger().
			SetSink(sink).
			SetComponentLevel(options.LogComponentCommand, options.LogLevelDebug))
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ConnectionError{Op: "ping", Err: err}
	}

	logger.Info().
		Str("database", name).
		Str("collection", cfg.Database.Collection).
		Msg("connected to the database")

	return &Database{
		Client:   client,
		Listings: client.Database(name).Collection(cfg.Database.Collection),
		log:      logger,
	}, nil
}

// ResolveName picks the configured database name, falling back to the one
// in the connection string and then to DefaultDatabaseName.
func ResolveName(configured, fromURI string) string {
	switch {
	case configured != "":
		return configured
	case fromURI != "":
		return fromURI
	default:
		return DefaultDatabaseName
	}
}

// Ping checks that the primary is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-flight operations until ctx
// expires.
func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
