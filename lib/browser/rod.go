package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"unisync-backend/lib/timezone"
)

type rodPage struct {
	page *rod.Page
}

func newRodPage(ctx context.Context, incognito *rod.Browser, opts Options) (*rodPage, error) {
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	page = page.Context(ctx)

	err = proto.EmulationSetLocaleOverride{Locale: opts.Locale}.Call(page)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set locale: %w", err)
	}
	err = proto.EmulationSetTimezoneOverride{TimezoneID: timezone.Name}.Call(page)
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set timezone: %w", err)
	}
	if opts.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent})
		if err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  1280,
		Height: 800,
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	return &rodPage{page: page}, nil
}

func (p *rodPage) Navigate(ctx context.Context, url string, timeout time.Duration) (int, error) {
	page := p.page.Context(ctx).Timeout(timeout)

	// The first response received after the navigation starts is the
	// document itself; its status is what the login flow branches on.
	var response proto.NetworkResponseReceived
	wait := page.WaitEvent(&response)
	if err := page.Navigate(url); err != nil {
		return 0, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	wait()
	status := int(response.Response.Status)
	if err := page.WaitLoad(); err != nil {
		return status, fmt.Errorf("page load did not finish: %w", err)
	}
	return status, nil
}

func (p *rodPage) WaitSettle(ctx context.Context, timeout time.Duration) error {
	return p.page.Context(ctx).Timeout(timeout).WaitIdle(timeout)
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) Title() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) Query(selector string) (Element, error) {
	has, el, err := p.page.Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNoMatch
	}
	return &rodElement{el: el}, nil
}

func (p *rodPage) CookieCount() int {
	cookies, err := p.page.Cookies(nil)
	if err != nil {
		return 0
	}
	return len(cookies)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Visible() (bool, error) {
	return e.el.Visible()
}

func (e *rodElement) Enabled() (bool, error) {
	res, err := e.el.Eval(`() => !this.disabled`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Fill(text string) error {
	if err := e.el.SelectAllText(); err != nil {
		return err
	}
	return e.el.Input(text)
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) PressEnter() error {
	return e.el.Type(input.Enter)
}

func (e *rodElement) Attr(name string) (string, bool) {
	val, err := e.el.Attribute(name)
	if err != nil || val == nil {
		return "", false
	}
	return *val, true
}
