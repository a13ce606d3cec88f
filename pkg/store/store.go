// Package store publishes a run's record to a Redis hash so dashboards and
// later playbook steps can read it without fetching the log file.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/bgpprop/pkg/record"
	"github.com/newtron-network/bgpprop/pkg/util"
)

// Client is the subset of *redis.Client the publisher needs.
type Client interface {
	Ping(ctx context.Context) *redis.StatusCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Close() error
}

// Options configure the Redis connection.
type Options struct {
	Addr     string
	DB       int
	Password string
}

// Publisher writes records into Redis hashes.
type Publisher struct {
	client Client
	addr   string
}

// NewPublisher creates a publisher for the server at opts.Addr. No
// connection is made until Connect or Publish.
func NewPublisher(opts Options) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr:        opts.Addr,
			DB:          opts.DB,
			Password:    opts.Password,
			DialTimeout: 5 * time.Second,
		}),
		addr: opts.Addr,
	}
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(c Client, addr string) *Publisher {
	return &Publisher{client: c, addr: addr}
}

// Connect tests the connection
func (p *Publisher) Connect(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis %s: %w", p.addr, err)
	}
	return nil
}

// Close closes the connection
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish sets one field per record entry on the hash named hash, in record
// order, with a single HSET. A key that occurs twice keeps its last value.
func (p *Publisher) Publish(ctx context.Context, hash string, rec *record.Record) error {
	pairs := rec.Pairs()
	if len(pairs) == 0 {
		return nil
	}
	args := make([]interface{}, 0, 2*len(pairs))
	for _, kv := range pairs {
		args = append(args, kv.Key, kv.Value)
	}
	n, err := p.client.HSet(ctx, hash, args...).Result()
	if err != nil {
		return fmt.Errorf("redis %s: hset %s: %w", p.addr, hash, err)
	}
	util.WithField("hash", hash).Debugf("published %d fields (%d new) to %s", len(pairs), n, p.addr)
	return nil
}
