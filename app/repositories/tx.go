package repositories

import (
	"context"

	"github.com/ganzorig/mishil/pkg/mongodb"
)

// MongoTxRunner runs fn inside a MongoDB multi-document transaction. Requires
// a replica set; standalone servers reject transactions.
type MongoTxRunner struct{}

func NewMongoTxRunner() *MongoTxRunner { return &MongoTxRunner{} }

func (MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return mongodb.WithTransaction(ctx, fn)
}
