package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"goout/internal/config"
)

func TestNewMongo(t *testing.T) {
	t.Run("missing uri", func(t *testing.T) {
		client, err := NewMongo(context.Background(), config.MongoConfig{})
		assert.ErrorIs(t, err, ErrIncompleteConfig)
		assert.Nil(t, client)
	})

	t.Run("connect error", func(t *testing.T) {
		orig := mongoConnect
		mongoConnect = func(ctx context.Context, opts ...*options.ClientOptions) (*mongo.Client, error) {
			return nil, errors.New("no reachable servers")
		}
		defer func() { mongoConnect = orig }()

		client, err := NewMongo(context.Background(), config.MongoConfig{URI: "mongodb://localhost:27017"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mongo connect: no reachable servers")
		assert.Nil(t, client)
	})
}
