package installer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/steviee/go-northstar/internal/state"
)

// progressInterval is how many bytes pass between progress reports.
const progressInterval = 256 * 1024

// download streams url to destPath. The body is written to a temp file next
// to destPath and renamed over it once complete, so destPath only ever holds
// a whole archive.
func (i *Installer) download(ctx context.Context, url, destPath string, progress func(done, total int64)) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: create request: %v", ErrDownload, err)
	}
	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %w", ErrDownload, &StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	tmp, err := state.CreateSibling(destPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	counter := &progressWriter{total: resp.ContentLength, report: progress}
	n, err := io.Copy(tmp, io.TeeReader(resp.Body, counter))
	if err != nil {
		return 0, fmt.Errorf("%w: write archive: %v", ErrDownload, err)
	}
	counter.flush()

	if err := state.CommitSibling(tmp, destPath, 0644); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	committed = true

	slog.Debug("file downloaded",
		"url", url,
		"destination", destPath,
		"bytes", n)

	return n, nil
}

// progressWriter counts bytes and reports every progressInterval bytes.
type progressWriter struct {
	total    int64
	done     int64
	reported int64
	report   func(done, total int64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.done += int64(len(p))
	if w.done-w.reported >= progressInterval {
		w.flush()
	}
	return len(p), nil
}

func (w *progressWriter) flush() {
	if w.report == nil || w.done == w.reported {
		return
	}
	w.reported = w.done
	w.report(w.done, w.total)
}
