package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/browser")

// Options controls how the underlying Chromium instance is launched.
type Options struct {
	// Headless defaults to true; set Headed in development to watch the
	// login flows run.
	Headed bool `json:"headed"`
	// ControlURL connects to an already running browser instead of
	// launching one, e.g. a browserless container in production.
	ControlURL string `json:"control_url"`
	// Locale is sent as the browser UI language. University portals
	// localize their error banners based on it, so it must stay "he-IL"
	// unless a profile says otherwise.
	Locale string `json:"locale"`
	// UserAgent overrides the default Chromium user agent when set.
	UserAgent string `json:"user_agent"`
}

// Browser wraps one Chromium process. Sessions created from it are
// isolated incognito contexts, so a single process safely serves many
// tenants at once.
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	opts     Options
}

func Launch(ctx context.Context, opts Options) (*Browser, error) {
	ctx, span := tracer.Start(ctx, "Launch")
	defer span.End()

	if opts.Locale == "" {
		opts.Locale = "he-IL"
	}

	b := &Browser{opts: opts}
	controlURL := opts.ControlURL
	if controlURL == "" {
		b.launcher = launcher.New().
			Headless(!opts.Headed).
			Set(flags.Flag("lang"), opts.Locale).
			Set("disable-gpu").
			Set("no-first-run")
		var err error
		controlURL, err = b.launcher.Context(ctx).Launch()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to launch chromium")
			return nil, fmt.Errorf("failed to launch chromium: %w", err)
		}
	}

	b.rod = rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.rod.Connect(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to connect to chromium")
		if b.launcher != nil {
			b.launcher.Kill()
		}
		return nil, fmt.Errorf("failed to connect to chromium: %w", err)
	}

	slog.InfoContext(ctx, "browser launched", "control_url", controlURL, "headed", opts.Headed)
	return b, nil
}

// NewSession opens a fresh incognito context with a single blank page.
// Nothing (cookies, storage, cache) is shared with other sessions.
func (b *Browser) NewSession(ctx context.Context) (Page, error) {
	ctx, span := tracer.Start(ctx, "NewSession")
	defer span.End()

	incognito, err := b.rod.Incognito()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create incognito context")
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}
	page, err := newRodPage(ctx, incognito, b.opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open page")
		return nil, err
	}
	return page, nil
}

func (b *Browser) Close() error {
	err := b.rod.Close()
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
	return err
}
