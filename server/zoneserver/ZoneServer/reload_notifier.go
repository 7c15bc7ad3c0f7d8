package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	reloadAllPlugins = "*"

	notifierMinBackoff = 500 * time.Millisecond
	notifierMaxBackoff = 30 * time.Second
)

var errSubscriptionClosed = errors.New("subscription closed")

// reloadNotifier listens on a Redis channel for plugin reload requests. A
// message carries the plugin name, or "*" for every plugin.
type reloadNotifier struct {
	client  *redis.Client
	channel string
	plugin  string
	logger  *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func newReloadNotifier(cfg RedisConfig, plugin string, logger *zap.Logger) *reloadNotifier {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil
	}
	return &reloadNotifier{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr}),
		channel: cfg.Channel,
		plugin:  plugin,
		logger:  loggerOrNop(logger).Named("reload_notifier"),

		minBackoff: notifierMinBackoff,
		maxBackoff: notifierMaxBackoff,
	}
}

func reloadRequested(payload, plugin string) bool {
	p := strings.TrimSpace(payload)
	return p == reloadAllPlugins || strings.EqualFold(p, plugin)
}

// Run blocks until ctx is done, calling onReload for each matching message.
// onReload runs on the notifier goroutine. A failed or lost subscription is
// retried with exponential backoff.
func (n *reloadNotifier) Run(ctx context.Context, onReload func()) error {
	backoff := n.minBackoff
	for {
		subscribed, err := n.listen(ctx, onReload)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			backoff = n.minBackoff
		}
		n.logger.Warn("reload subscription failed, retrying",
			zap.String("channel", n.channel),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if backoff *= 2; backoff > n.maxBackoff {
			backoff = n.maxBackoff
		}
	}
}

// listen holds one subscription until it fails or ctx is done. subscribed
// reports whether the server confirmed the subscription.
func (n *reloadNotifier) listen(ctx context.Context, onReload func()) (subscribed bool, err error) {
	pubsub := n.client.Subscribe(ctx, n.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	n.logger.Info("listening for reload requests", zap.String("channel", n.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case msg, ok := <-ch:
			if !ok {
				return true, errSubscriptionClosed
			}
			if !reloadRequested(msg.Payload, n.plugin) {
				continue
			}
			n.logger.Info("reload requested", zap.String("payload", msg.Payload))
			onReload()
		}
	}
}

func (n *reloadNotifier) Close() error {
	return n.client.Close()
}
