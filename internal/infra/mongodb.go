package infra

import (
	"context"
	"fmt"

	"github.com/umalmyha/customers-mvc/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func Mongodb(ctx context.Context, cfg config.MongoCfg) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)).
		SetAuth(options.Credential{Username: cfg.User, Password: cfg.Password}).
		SetMaxPoolSize(uint64(cfg.MaxPoolSize))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to establish connection to mongo - %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("didn't get response from mongo after sending ping request - %w", err)
	}
	return client, nil
}
