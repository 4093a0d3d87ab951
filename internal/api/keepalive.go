package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dynasty-bot/internal/config"

	"github.com/valyala/fasthttp"
)

var ErrNoURL = errors.New("no self-ping url configured")

// KeepAliveClient pings the bot's own public health URL so hosts that idle
// out quiet web services keep the process running.
type KeepAliveClient struct {
	url    string
	client *fasthttp.Client
}

type PingResult struct {
	Status  int
	Latency time.Duration
}

func NewKeepAliveClient(cfg *config.Config) *KeepAliveClient {
	return &KeepAliveClient{
		url: cfg.SelfPingURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     2,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *KeepAliveClient) Enabled() bool {
	return c.url != ""
}

func (c *KeepAliveClient) URL() string {
	return c.url
}

func (c *KeepAliveClient) Ping(ctx context.Context) (PingResult, error) {
	if c.url == "" {
		return PingResult{}, ErrNoURL
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "dynasty-bot-keepalive")

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.Do(req, resp)
	}
	if err != nil {
		return PingResult{}, fmt.Errorf("self-ping failed: %w", err)
	}

	result := PingResult{Status: resp.StatusCode(), Latency: time.Since(start)}
	if result.Status < 200 || result.Status >= 300 {
		return result, fmt.Errorf("self-ping returned status %d", result.Status)
	}
	return result, nil
}
