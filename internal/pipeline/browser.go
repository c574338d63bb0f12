package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
)

// BrowserFetcher loads pages in headless Chrome so that script-rendered
// articles have their text in the DOM
type BrowserFetcher struct {
	timeout   time.Duration
	userAgent string
	maxBytes  int64
	settle    time.Duration
	robots    *util.RobotsChecker
}

// NewBrowserFetcher creates a headless Chrome fetcher. robots may be nil.
func NewBrowserFetcher(cfg model.HTTPConfig, robots *util.RobotsChecker) *BrowserFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{
		timeout:   timeout,
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		settle:    time.Second,
		robots:    robots,
	}
}

// Fetch navigates to rawURL and returns the rendered document
func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if err := checkRobots(ctx, b.robots, rawURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html, location string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	if b.maxBytes > 0 && int64(len(html)) > b.maxBytes {
		html = html[:b.maxBytes]
	}
	return &FetchResult{
		HTML:        html,
		StatusCode:  200,
		ContentType: "text/html",
		FinalURL:    location,
	}, nil
}
