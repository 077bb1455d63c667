package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/silkmod/pkg/errors"
	"github.com/arthur-debert/silkmod/pkg/logging"
)

// DefaultTimeout applies when no http.Client is supplied
const DefaultTimeout = 30 * time.Second

type transport struct {
	client    *http.Client
	userAgent string
}

func newTransport(client *http.Client, timeout time.Duration, userAgent string) transport {
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if userAgent == "" {
		userAgent = "silkmod"
	}
	return transport{client: client, userAgent: userAgent}
}

func (t transport) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRemote, "failed to create request for %s", url)
	}
	req.Header.Set("User-Agent", t.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	logger := logging.GetLogger("remote")
	logger.Debug().Str("url", url).Msg("GET")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRemote, "request to %s failed", url).
			WithDetail("url", url)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Newf(errors.ErrRemote, "%s returned status %d", url, resp.StatusCode).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}
	return resp, nil
}

func (t transport) getJSON(ctx context.Context, url string, out interface{}) error {
	resp, err := t.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, errors.ErrRemote, "invalid JSON from %s", url).
			WithDetail("url", url)
	}
	return nil
}

// Download fetches url into destPath, writing through a temporary file so a
// failed transfer never leaves a partial archive behind
func Download(ctx context.Context, client *http.Client, url, destPath string) error {
	t := newTransport(client, 0, "")
	resp, err := t.get(ctx, url, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(destPath))
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".silkmod-download-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, errors.ErrRemote, "download of %s interrupted", url)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to flush download")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to move download to %s", destPath)
	}
	return nil
}
