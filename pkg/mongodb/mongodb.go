// Package mongodb owns the process-wide MongoDB client.
//
// The client is created once on first use and reused across requests. In the
// serverless deployment the process may be frozen and thawed between
// invocations, so the pool is kept small and connection setup is amortised
// over the container's lifetime. Close() is the explicit teardown hook for
// graceful shutdown.
package mongodb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ganzorig/mishil/config"
)

const (
	connectTimeout = 5 * time.Second
	maxPoolSize    = 10
)

var (
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
)

// Connect establishes the cached client. Safe to call more than once; the
// existing client is reused.
func Connect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.MongoURI()).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetMaxPoolSize(maxPoolSize)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("mongodb: ping: %w", err)
	}

	client = c
	db = c.Database(config.MongoDB())
	return nil
}

// Client returns the cached client. Connect must have succeeded first.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// Collection returns a handle on the named collection.
func Collection(name string) *mongo.Collection {
	mu.Lock()
	defer mu.Unlock()
	return db.Collection(name)
}

// Close disconnects the cached client. Called from the graceful-shutdown path.
func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	db = nil
	return err
}

// WithTransaction runs fn inside a session transaction. Every store
// operation inside fn must use the provided context so it joins the session.
func WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c := Client()
	if c == nil {
		return fmt.Errorf("mongodb: not connected")
	}

	session, err := c.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IndexSpec declares one secondary index on a collection.
type IndexSpec struct {
	Collection string
	Keys       bson.D
	Unique     bool
}

// EnsureIndexes creates the given indexes, ignoring "already exists" by
// relying on CreateOne's idempotence for identical definitions.
func EnsureIndexes(ctx context.Context, specs []IndexSpec) error {
	for _, spec := range specs {
		model := mongo.IndexModel{Keys: spec.Keys}
		if spec.Unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := Collection(spec.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("mongodb: index on %s: %w", spec.Collection, err)
		}
	}
	return nil
}
