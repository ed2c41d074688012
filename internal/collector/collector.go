// Package collector lists the recent uploads of the configured channels
// from their public pages and Atom feeds.
package collector

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/config"
)

// Collector fetches channel feeds over HTTP.
type Collector struct {
	client      *http.Client
	baseURL     string
	channels    []schemas.Channel
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

// Option customizes a Collector.
type Option func(*Collector)

// WithClock replaces time.Now for the lookback window.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New builds a Collector. client should come from network.NewClient so
// requests are paced and carry browser headers.
func New(cfg config.CollectorConfig, client *http.Client, logger *zap.Logger, opts ...Option) *Collector {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://www.youtube.com"
	}
	c := &Collector{
		client:      client,
		baseURL:     base,
		channels:    cfg.Channels,
		concurrency: cfg.Concurrency,
		now:         time.Now,
		logger:      logger.Named("collector"),
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers videos published within the last hours across every
// configured channel. A failing channel is logged and skipped. The result
// keeps channel order and lists each channel's videos newest first.
func (c *Collector) Collect(ctx context.Context, hours int) ([]schemas.Video, error) {
	c.logger.Info("Collecting recent videos.", zap.Int("channels", len(c.channels)), zap.Int("hours", hours))

	perChannel := make([][]schemas.Video, len(c.channels))
	now := c.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, ch := range c.channels {
		g.Go(func() error {
			videos, err := c.collectChannel(gctx, ch, hours, now)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("Skipping channel.", zap.String("channel", ch.Name), zap.Error(err))
				return nil
			}
			perChannel[i] = videos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []schemas.Video
	for _, videos := range perChannel {
		all = append(all, videos...)
	}
	c.logger.Info("Collection finished.", zap.Int("videos", len(all)))
	return all, nil
}

func (c *Collector) collectChannel(ctx context.Context, ch schemas.Channel, hours int, now time.Time) ([]schemas.Video, error) {
	id := ch.ChannelID
	if id == "" {
		var err error
		if id, err = c.ResolveChannelID(ctx, ch.Handle); err != nil {
			return nil, err
		}
	}
	feed, err := c.FetchFeed(ctx, id)
	if err != nil {
		return nil, err
	}
	recent := FilterRecent(feed, hours, now)
	c.logger.Debug("Channel feed read.",
		zap.String("channel", ch.Name),
		zap.String("channel_id", id),
		zap.Int("feed", len(feed)),
		zap.Int("recent", len(recent)))

	sort.SliceStable(recent, func(a, b int) bool { return recent[a].Published.After(recent[b].Published) })
	for i := range recent {
		recent[i].ChannelName = ch.Name
		recent[i].ChannelHandle = ch.Handle
		recent[i].ChannelID = id
	}
	return recent, nil
}
