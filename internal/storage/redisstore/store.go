package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveSession is the cached view of an open session keyed by station, used
// by the front desk for fast occupancy lookups.
type ActiveSession struct {
	SessionID  string    `json:"session_id"`
	CustomerID string    `json:"customer_id"`
	StationID  string    `json:"station_id"`
	StartTime  time.Time `json:"start_time"`
}

// Store manages the active session cache.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// NewClient returns a configured go-redis client and validates the connection
// with PING.
func NewClient(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func (s *Store) key(stationID string) string {
	return fmt.Sprintf("playhub:sessions:active:%s", stationID)
}

// Save caches the open session for its station.
func (s *Store) Save(ctx context.Context, session ActiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.StationID), data, s.ttl).Err()
}

// Get returns the cached open session for a station.
func (s *Store) Get(ctx context.Context, stationID string) (*ActiveSession, error) {
	result, err := s.client.Get(ctx, s.key(stationID)).Result()
	if err != nil {
		return nil, err
	}
	var session ActiveSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete drops the cached session when the customer checks out.
func (s *Store) Delete(ctx context.Context, stationID string) error {
	return s.client.Del(ctx, s.key(stationID)).Err()
}
