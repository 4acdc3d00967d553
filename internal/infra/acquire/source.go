package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
	"github.com/fundup7/bharatqa-backend/internal/domain/port"
)

// ObjectFetcher downloads a recording addressed by storage key.
type ObjectFetcher interface {
	FetchVideo(ctx context.Context, objectKey string, destPath string) error
}

// Source fetches recordings by URL or storage key. URL downloads carry the
// optional bearer credential and are bounded by the configured timeout.
type Source struct {
	httpClient *http.Client
	objects    ObjectFetcher
	timeout    time.Duration
}

func NewSource(objects ObjectFetcher, timeout time.Duration) *Source {
	return &Source{
		httpClient: &http.Client{},
		objects:    objects,
		timeout:    timeout,
	}
}

func (s *Source) Fetch(ctx context.Context, loc port.VideoLocator, destPath string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if loc.ObjectKey != "" {
		if err := s.objects.FetchVideo(ctx, loc.ObjectKey, destPath); err != nil {
			return &entity.AcquisitionError{Locator: loc.ObjectKey, Err: err}
		}
		return nil
	}
	return s.fetchURL(ctx, loc, destPath)
}

func (s *Source) fetchURL(ctx context.Context, loc port.VideoLocator, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.URL, nil)
	if err != nil {
		return &entity.AcquisitionError{Locator: loc.URL, Err: err}
	}
	if loc.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+loc.AuthToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &entity.AcquisitionError{Locator: loc.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &entity.AcquisitionError{Locator: loc.URL, StatusCode: resp.StatusCode}
	}

	f, err := os.Create(destPath)
	if err != nil {
		return &entity.AcquisitionError{Locator: loc.URL, Err: fmt.Errorf("create dest: %w", err)}
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return &entity.AcquisitionError{Locator: loc.URL, Err: fmt.Errorf("write body: %w", err)}
	}
	return nil
}
