package synth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abaddouh/fakeimg/internal/errors"
)

// Remote asks a dummyimage-compatible service for the placeholder.
// It performs exactly one request per call and never retries.
type Remote struct {
	BaseURL    string
	Background string
	Foreground string
	Stem       string
	Format     Format
	Client     *http.Client
}

func NewRemote(baseURL string, timeout time.Duration, bg, fg string) *Remote {
	return &Remote{
		BaseURL:    baseURL,
		Background: bg,
		Foreground: fg,
		Stem:       "foo",
		Format:     FormatJPEG,
		Client:     &http.Client{Timeout: timeout},
	}
}

// URL is {base}/{w}x{h}/{bg}/{fg}/{stem}.{format}
func (r *Remote) URL(width, height int) string {
	return fmt.Sprintf("%s/%dx%d/%s/%s/%s.%s",
		strings.TrimRight(r.BaseURL, "/"), width, height,
		strings.TrimPrefix(r.Background, "#"), strings.TrimPrefix(r.Foreground, "#"),
		r.Stem, r.Format)
}

func (r *Remote) Synthesize(ctx context.Context, width, height int) ([]byte, error) {
	url := r.URL(width, height)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesisNetwork, "remote", url, "build request", err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesisNetwork, "remote", url, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.KindSynthesisNetwork, "remote", url,
			fmt.Sprintf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindSynthesisNetwork, "remote", url, "read body", err)
	}
	if len(body) == 0 {
		return nil, errors.New(errors.KindSynthesisNetwork, "remote", url, "empty body")
	}

	return body, nil
}
