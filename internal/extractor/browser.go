package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// PageFetcher fetches one product detail page and returns its HTML snapshot.
type PageFetcher interface {
	ProductPage(ctx context.Context, url string) (string, error)
}

// Session owns a headless browser allocator. It is created once at startup
// and shared by the extractor for the life of the process; pages are fetched
// one at a time.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	elementWait time.Duration
	navTimeout  time.Duration
	logger      *zap.Logger
}

// NewSession starts a browser allocator with the usual headless flags plus
// the anti-automation flag the target site is sensitive to.
func NewSession(elementWait, navTimeout time.Duration, logger *zap.Logger) *Session {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		elementWait: elementWait,
		navTimeout:  navTimeout,
		logger:      logger,
	}
}

// Close tears down the browser allocator.
func (s *Session) Close() {
	s.allocCancel()
}

// ProductPage navigates to url and returns the page HTML after giving the
// title and description elements a bounded window to appear. Element wait
// timeouts are not errors; the parser decides what an absent element means.
func (s *Session) ProductPage(ctx context.Context, url string) (string, error) {
	taskCtx, cancel := chromedp.NewContext(s.allocCtx)
	defer cancel()

	navCtx, navCancel := context.WithTimeout(taskCtx, s.navTimeout)
	defer navCancel()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNavigation, url, err)
	}

	s.waitFor(taskCtx, "#productTitle")
	s.waitFor(taskCtx, "#productDescription")

	var htmlContent string
	snapCtx, snapCancel := context.WithTimeout(taskCtx, s.navTimeout)
	defer snapCancel()
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &htmlContent)); err != nil {
		return "", fmt.Errorf("%w: %s: snapshot: %v", ErrNavigation, url, err)
	}
	return htmlContent, nil
}

// waitFor blocks up to the element wait window for selector to become ready.
func (s *Session) waitFor(ctx context.Context, selector string) {
	waitCtx, cancel := context.WithTimeout(ctx, s.elementWait)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		s.logger.Debug("element did not appear within wait window",
			zap.String("selector", selector), zap.Error(err))
	}
}
