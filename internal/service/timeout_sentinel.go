package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"matchroom/internal/cache"
	"matchroom/internal/metrics"
)

// TimeoutSentinel listens for expired deadline keys via Redis keyspace
// notifications and hands them to the match service. One sentinel runs per
// server process.
type TimeoutSentinel struct {
	rdb     *redis.Client
	db      int
	matches *MatchService
}

func NewTimeoutSentinel(rdb *redis.Client, db int, matches *MatchService) *TimeoutSentinel {
	return &TimeoutSentinel{
		rdb:     rdb,
		db:      db,
		matches: matches,
	}
}

// Run subscribes to expired-key events and processes them until ctx is
// cancelled. Per-event errors are logged and swallowed so one bad match
// cannot stall the stream.
func (t *TimeoutSentinel) Run(ctx context.Context) error {
	// Expired-event notifications are off by default; best effort, the
	// server may lack CONFIG rights on managed Redis.
	if err := t.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		logrus.WithError(err).Warn("could not enable keyspace notifications; deadline handling depends on external config")
	}

	pattern := fmt.Sprintf("__keyevent@%d__:expired", t.db)
	pubsub := t.rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	logrus.WithField("pattern", pattern).Info("timeout sentinel listening for expired deadlines")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("timeout sentinel stopped")
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			matchID, isDeadline := cache.MatchIDFromDeadlineKey(msg.Payload)
			if !isDeadline {
				continue
			}
			logrus.WithField("match_id", matchID).Info("move deadline expired")
			if err := t.matches.ExpireDeadline(ctx, matchID); err != nil {
				metrics.SentinelErrors.Inc()
				logrus.WithError(err).WithField("match_id", matchID).
					Error("failed to handle expired deadline")
			}
		}
	}
}
