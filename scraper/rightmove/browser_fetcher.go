package rightmove

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"propertyedge/utils"
)

// settle is how long a page is given to run its scripts after load.
const settle = 3 * time.Second

// BrowserFetcher renders listing pages in headless Chrome. Use it when the
// plain HTTP fetch is served a bot wall.
type BrowserFetcher struct {
	timeout       time.Duration
	logger        *utils.Logger
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewBrowserFetcher prepares a headless browser. chromeBin may be empty, in
// which case the usual install locations are searched. The browser itself
// starts on the first Fetch.
func NewBrowserFetcher(chromeBin string, timeout time.Duration, logger *utils.Logger) *BrowserFetcher {
	bin := findChromeBinary(chromeBin)
	logger.Info("[browser] Using browser binary: %s", orDefault(bin, "(chromedp default)"))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	return &BrowserFetcher{
		timeout:       timeout,
		logger:        logger,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}
}

// Fetch opens url in a new tab and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	// An empty Run on the browser context launches Chrome so that each
	// fetch below gets its own tab rather than its own browser.
	f.startOnce.Do(func() { f.startErr = chromedp.Run(f.browserCtx) })
	if f.startErr != nil {
		return "", fmt.Errorf("chromedp start: %w", f.startErr)
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if f.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, f.timeout+settle)
		defer cancelTimeout()
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("chromedp fetch: %w", err)
	}
	f.logger.Debug("[browser] Rendered %s (%d bytes)", url, len(html))
	return html, nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() {
	f.cancelBrowser()
	f.cancelAlloc()
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
