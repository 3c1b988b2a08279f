// Package poller follows a reservation from the guest's side until it reaches a final status.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"go.uber.org/zap"
)

const DefaultInterval = 2 * time.Second

type Poller struct {
	baseURL  string
	client   *http.Client
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.interval = d
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Poller) {
		p.client = c
	}
}

func New(baseURL string, logger *zap.Logger, opts ...Option) *Poller {
	p := &Poller{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		interval: DefaultInterval,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch polls the status of id until it is terminal, calling onUpdate after every
// successful read. Transport failures and non-2xx answers are retried on the next tick;
// a 404 ends the watch with domain.ErrNotFound.
func (p *Poller) Watch(ctx context.Context, id string, onUpdate func(domain.StatusView)) (*domain.StatusView, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		view, err := p.fetch(ctx, id)
		switch {
		case err == nil:
			if onUpdate != nil {
				onUpdate(*view)
			}
			if view.Status.Terminal() {
				return view, nil
			}
		case errors.Is(err, domain.ErrNotFound):
			return nil, err
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("poll failed, retrying", zap.String("reservation_id", id), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) fetch(ctx context.Context, id string) (*domain.StatusView, error) {
	q := url.Values{}
	q.Set("_", strconv.FormatInt(p.now().UnixNano(), 10))
	target := p.baseURL + "/reservations/status/" + url.PathEscape(id) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var view domain.StatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	if !view.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", view.Status)
	}
	return &view, nil
}
