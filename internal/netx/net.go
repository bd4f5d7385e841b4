// Package netx fetches objects through presigned storage URLs. Those URLs
// carry their own signature, so requests go out without the API client's
// bearer header.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/milktracker/internal/filex"
)

type Downloader struct {
	Client *http.Client
}

func NewDownloader(c *http.Client) *Downloader {
	if c == nil {
		c = http.DefaultClient
	}
	return &Downloader{Client: c}
}

// Download saves the object behind a presigned GET url to dst and returns
// the number of bytes written. A partial file is removed on failure.
func (d *Downloader) Download(ctx context.Context, url, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	if _, err := filex.EnsureParentDir(dst); err != nil {
		return 0, err
	}
	f, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return 0, err
	}
	return n, nil
}
