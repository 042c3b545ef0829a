package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// PreviewOptions configures a preview run.
type PreviewOptions struct {
	Width      int
	Height     int
	Screenshot string
}

// Result is what the editor reported at the previewed size.
type Result struct {
	URL        string
	Width      int
	Height     int
	Mode       string
	SessionID  string
	Screenshot string
}

// Preview opens url at the requested viewport and reads the editor's mode
// back from the page. The mode comes from the DOM after the client has
// re-checked the viewport, so it reflects the live gate.
func Preview(ctx context.Context, url string, opts PreviewOptions, log *zap.SugaredLogger) (Result, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return Result{}, fmt.Errorf("viewport must be positive, got %dx%d", opts.Width, opts.Height)
	}

	s, err := NewSession(ctx, log)
	if err != nil {
		return Result{}, err
	}
	defer s.Close()

	if err := s.SetViewport(opts.Width, opts.Height); err != nil {
		return Result{}, err
	}
	if err := s.NavigateAndWait(url); err != nil {
		return Result{}, err
	}

	root, err := s.Page.Element("#editor-root")
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNoEditor, err)
	}
	res := Result{URL: url, Width: opts.Width, Height: opts.Height}
	if v, err := root.Attribute("data-mode"); err == nil && v != nil {
		res.Mode = *v
	}
	if v, err := root.Attribute("data-session"); err == nil && v != nil {
		res.SessionID = *v
	}

	if opts.Screenshot != "" {
		data, err := s.Page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return res, fmt.Errorf("screenshot: %w", err)
		}
		if err := os.WriteFile(opts.Screenshot, data, 0644); err != nil {
			return res, fmt.Errorf("write screenshot: %w", err)
		}
		res.Screenshot = opts.Screenshot
	}

	s.log.Infow("preview", "url", url, "width", opts.Width, "mode", res.Mode)
	return res, nil
}
