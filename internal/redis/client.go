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

// ScanLimitKey namespaces the rate-limit counter for gate scans by guard.
func ScanLimitKey(guardID string) string {
	return fmt.Sprintf("scanlimit:%s", guardID)
}

// SubmitLimitKey namespaces the rate-limit counter for request submissions
// by person.
func SubmitLimitKey(personID string) string {
	return fmt.Sprintf("submitlimit:%s", personID)
}
