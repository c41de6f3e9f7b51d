package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/umalmyha/customers-mvc/internal/model"
	"github.com/vmihailenco/msgpack/v5"
)

const cachedCustomerTimeToLive = 10 * time.Minute

// CustomerCacheRepository represents behavior of customer cache
type CustomerCacheRepository interface {
	FindByID(context.Context, int64) (*model.Customer, error)
	Create(context.Context, *model.Customer) error
	DeleteByID(context.Context, int64) error
}

type redisCustomerCache struct {
	client *redis.Client
}

// NewRedisCustomerCache builds redis customer cache, values are stored in msgpack format
func NewRedisCustomerCache(client *redis.Client) CustomerCacheRepository {
	return &redisCustomerCache{client: client}
}

func (r *redisCustomerCache) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	res, err := r.client.Get(ctx, customerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var c model.Customer
	if err := msgpack.Unmarshal(res, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *redisCustomerCache) Create(ctx context.Context, c *model.Customer) error {
	encoded, err := msgpack.Marshal(c)
	if err != nil {
		return err
	}

	if _, err := r.client.SetNX(ctx, customerKey(c.ID), encoded, cachedCustomerTimeToLive).Result(); err != nil {
		return err
	}
	return nil
}

func (r *redisCustomerCache) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.client.Del(ctx, customerKey(id)).Result(); err != nil {
		return err
	}
	return nil
}

type nopCustomerCache struct{}

// NewNopCustomerCache builds cache which never holds anything
func NewNopCustomerCache() CustomerCacheRepository {
	return nopCustomerCache{}
}

func (nopCustomerCache) FindByID(context.Context, int64) (*model.Customer, error) {
	return nil, nil
}

func (nopCustomerCache) Create(context.Context, *model.Customer) error {
	return nil
}

func (nopCustomerCache) DeleteByID(context.Context, int64) error {
	return nil
}

func customerKey(id int64) string {
	return fmt.Sprintf("customer:%d", id)
}
