package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

func SessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

func EventDedupKey(eventID string) string {
	return fmt.Sprintf("webhook:event:%s", eventID)
}

// DeliveryLockKey guards a single delivery run across instances.
const DeliveryLockKey = "scheduler:delivery"
