package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/geo"
)

// DefaultRestCountriesURL is the public REST Countries v3.1 endpoint.
const DefaultRestCountriesURL = "https://restcountries.com/v3.1"

// RestCountries looks capitals up through the REST Countries API.
type RestCountries struct {
	baseURL string
	client  *http.Client
	retrier *retry.Retrier
	log     *zap.SugaredLogger
}

// RestOption configures a RestCountries client.
type RestOption func(*RestCountries)

// WithBaseURL points the client at another server (tests, mirrors).
func WithBaseURL(u string) RestOption {
	return func(r *RestCountries) { r.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) RestOption {
	return func(r *RestCountries) { r.client.Timeout = d }
}

// WithRetry sets how many attempts are made and the backoff bounds between them.
func WithRetry(maxTries int, initialDelay, maxDelay time.Duration) RestOption {
	return func(r *RestCountries) { r.retrier = retry.NewRetrier(maxTries, initialDelay, maxDelay) }
}

// WithRestLogger sets the logger.
func WithRestLogger(l *zap.SugaredLogger) RestOption {
	return func(r *RestCountries) { r.log = l }
}

func NewRestCountries(opts ...RestOption) *RestCountries {
	r := &RestCountries{
		baseURL: DefaultRestCountriesURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		retrier: retry.NewRetrier(3, 250*time.Millisecond, 2*time.Second),
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type capitalInfoResponse []struct {
	CapitalInfo struct {
		LatLng []float64 `json:"latlng"`
	} `json:"capitalInfo"`
}

// CapitalOf fetches the capital coordinates of country.
// A 404 yields ErrUnknownCountry and a record without coordinates yields
// ErrNoCapital, both without retrying; transport errors and 5xx answers are retried.
func (r *RestCountries) CapitalOf(ctx context.Context, country string) (geo.Point, error) {
	endpoint := fmt.Sprintf("%s/name/%s?fields=capitalInfo", r.baseURL, url.PathEscape(country))

	var (
		point geo.Point
		miss  error
	)
	err := r.retrier.RunContext(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			miss = ErrUnknownCountry
			return nil
		}
		req.Header.Set("Accept", "application/json")

		resp, err := r.client.Do(req)
		if err != nil {
			r.log.Debugf("capital lookup for %s failed, retrying: %v", country, err)
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			miss = ErrUnknownCountry
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("restcountries: %s", resp.Status)
		case resp.StatusCode != http.StatusOK:
			miss = ErrNoCapital
			r.log.Warnf("capital lookup for %s: unexpected status %s", country, resp.Status)
			return nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("restcountries: reading body: %w", err)
		}
		var data capitalInfoResponse
		if err := json.Unmarshal(body, &data); err != nil || len(data) == 0 || len(data[0].CapitalInfo.LatLng) < 2 {
			miss = ErrNoCapital
			return nil
		}
		ll := data[0].CapitalInfo.LatLng
		point = geo.Point{Lon: ll[1], Lat: ll[0]}
		return nil
	})
	if err != nil {
		return geo.Point{}, fmt.Errorf("capital of %s: %w", country, err)
	}
	if miss != nil {
		return geo.Point{}, fmt.Errorf("capital of %s: %w", country, miss)
	}
	return point, nil
}
