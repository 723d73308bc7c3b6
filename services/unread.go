// services/unread.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Counter stores queried by the aggregator. Both counts are derived from
// the same collections the list endpoints read, never stored independently.

type NotificationCounter interface {
	CountUnreadForUser(ctx context.Context, userID primitive.ObjectID, role string) (int64, error)
}

type ThreadCounter interface {
	CountUnreadForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// cacheTTL is kept below the client's shortest poll interval so a stale
// counter can never outlive one polling cycle.
const cacheTTL = 3 * time.Second

// UnreadCache is a small Redis wrapper around per-user counters. All
// methods tolerate a nil receiver and a nil client: without Redis, counts
// are simply computed from MongoDB every time.
type UnreadCache struct {
	client *redis.Client
}

func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client}
}

func (c *UnreadCache) get(ctx context.Context, key string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *UnreadCache) set(ctx context.Context, key string, count int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Set(ctx, key, strconv.FormatInt(count, 10), cacheTTL)
}

// notificationsVersion returns the current version stamp baked into every
// cached notification counter key. Missing key reads as version zero.
func (c *UnreadCache) notificationsVersion(ctx context.Context) string {
	if c == nil || c.client == nil {
		return "0"
	}
	val, err := c.client.Get(ctx, notificationsVersionKey).Result()
	if err != nil {
		return "0"
	}
	return val
}

// Invalidate drops both counters for a user. Called on every mutation that
// can change what the user sees.
func (c *UnreadCache) Invalidate(userID primitive.ObjectID) {
	if c == nil || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.client.Del(ctx, notificationCountKey(c.notificationsVersion(ctx), userID), messageCountKey(userID))
}

// InvalidateUsers drops counters for a resolved recipient set.
func (c *UnreadCache) InvalidateUsers(userIDs []primitive.ObjectID) {
	for _, id := range userIDs {
		c.Invalidate(id)
	}
}

// InvalidateBroadcast bumps the notifications version, orphaning every
// cached notification counter at once. Role-wide broadcasts have no
// enumerable recipient set, so per-user deletes cannot cover them; the
// orphaned keys expire on their own TTL.
func (c *UnreadCache) InvalidateBroadcast() {
	if c == nil || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.client.Incr(ctx, notificationsVersionKey)
}

const notificationsVersionKey = "unread:notifications:ver"

func notificationCountKey(version string, userID primitive.ObjectID) string {
	return fmt.Sprintf("unread:notifications:v%s:%s", version, userID.Hex())
}

func messageCountKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("unread:messages:%s", userID.Hex())
}

// UnreadAggregator derives per-user unread counters. The counter is not
// authoritative: it is always the count of unread records the matching list
// endpoint would return.
type UnreadAggregator struct {
	notifications NotificationCounter
	threads       ThreadCounter
	cache         *UnreadCache
}

func NewUnreadAggregator(notifications NotificationCounter, threads ThreadCounter, cache *UnreadCache) *UnreadAggregator {
	return &UnreadAggregator{
		notifications: notifications,
		threads:       threads,
		cache:         cache,
	}
}

// NotificationUnreadCount counts broadcast notifications applicable to the
// user without a read receipt.
func (a *UnreadAggregator) NotificationUnreadCount(ctx context.Context, userID primitive.ObjectID, role string) (int64, error) {
	key := notificationCountKey(a.cache.notificationsVersion(ctx), userID)
	if count, ok := a.cache.get(ctx, key); ok {
		return count, nil
	}

	count, err := a.notifications.CountUnreadForUser(ctx, userID, role)
	if err != nil {
		return 0, err
	}

	a.cache.set(ctx, key, count)
	return count, nil
}

// MessageUnreadCount sums unread chat messages across the user's threads.
func (a *UnreadAggregator) MessageUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	key := messageCountKey(userID)
	if count, ok := a.cache.get(ctx, key); ok {
		return count, nil
	}

	count, err := a.threads.CountUnreadForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	a.cache.set(ctx, key, count)
	return count, nil
}

// UnreadCounts returns both counters; the websocket handler pushes these in
// the unreadSync event after every (re)connect.
func (a *UnreadAggregator) UnreadCounts(ctx context.Context, userID primitive.ObjectID, role string) (int64, int64, error) {
	notifCount, err := a.NotificationUnreadCount(ctx, userID, role)
	if err != nil {
		return 0, 0, err
	}

	msgCount, err := a.MessageUnreadCount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	return notifCount, msgCount, nil
}

// Invalidate exposes cache invalidation to the controllers that mutate
// read state.
func (a *UnreadAggregator) Invalidate(userID primitive.ObjectID) {
	a.cache.Invalidate(userID)
}
