package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pfrederiksen/thu-timetable/internal/logger"
)

// Export size of the timetable image
const (
	Width  = 1080
	Height = 1920
)

// Capturer takes a PNG screenshot of a URL at the given viewport size
type Capturer interface {
	Capture(ctx context.Context, target string, width, height int) ([]byte, error)
}

// Browser captures pages with a headless Chromium driven by rod. Bin may
// point at a specific browser binary; empty lets the launcher find or
// download one.
type Browser struct {
	Bin string
}

// Capture implements Capturer
func (b *Browser) Capture(ctx context.Context, target string, width, height int) ([]byte, error) {
	l := launcher.New().Headless(true).Context(ctx)
	if b.Bin != "" {
		l = l.Bin(b.Bin)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("setting viewport: %w", err)
	}

	if err := page.Navigate(target); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", target, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for %s: %w", target, err)
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return data, nil
}

// Exporter turns a rendered timetable into a fixed-size PNG
type Exporter struct {
	capturer Capturer
	width    int
	height   int
}

// New creates an Exporter producing Width x Height images
func New(c Capturer) *Exporter {
	return &Exporter{capturer: c, width: Width, height: Height}
}

// Target resolves the page to load. Remote sources are used as given; local
// paths become absolute file:// URLs.
func Target(source string, remote bool) (string, error) {
	if remote {
		u, err := url.Parse(source)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("invalid remote URL %q", source)
		}
		return source, nil
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", source, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("reading %s: %w", source, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Normalize decodes a screenshot and resizes it to width x height when the
// browser produced anything else (HiDPI scaling, scrollbars).
func Normalize(data []byte, width, height int) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// Export screenshots source into dest and returns dest's absolute path.
// An existing file at dest is removed first, so a failed export never
// leaves a stale image behind.
func (e *Exporter) Export(ctx context.Context, source, dest string, remote bool) (string, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("export.screenshot", time.Since(start)) }()

	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dest, err)
	}
	if !strings.EqualFold(filepath.Ext(dest), ".png") {
		return "", fmt.Errorf("export path %s must end in .png", dest)
	}

	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("removing previous image: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	target, err := Target(source, remote)
	if err != nil {
		return "", err
	}

	data, err := e.capturer.Capture(ctx, target, e.width, e.height)
	if err != nil {
		return "", err
	}

	img, err := Normalize(data, e.width, e.height)
	if err != nil {
		return "", err
	}
	if err := imaging.Save(img, dest); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}

	logger.Info("Exported timetable image", logger.Fields{
		"source": target,
		"path":   dest,
		"width":  e.width,
		"height": e.height,
	})
	return dest, nil
}
