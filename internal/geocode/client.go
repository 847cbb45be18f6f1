// Package geocode resolves coordinates to a human-readable place name for
// prefilling the registration location field.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls a bigdatacloud-style reverse-geocoding endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the given base URL. A nil httpClient selects
// a default with a short timeout; the lookup is best-effort and must not hold
// up the registration form.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type reverseResponse struct {
	City                 string `json:"city"`
	Locality             string `json:"locality"`
	PrincipalSubdivision string `json:"principalSubdivision"`
	CountryName          string `json:"countryName"`
}

// Reverse returns "locality, region, country" built from the non-empty parts
// of the provider response. Any failure — transport, status, decode, or an
// entirely empty response — falls back to the raw "lat, lng" string; the
// caller never sees an error.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%g, %g", lat, lng)

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", lat))
	q.Set("longitude", fmt.Sprintf("%g", lng))
	q.Set("localityLanguage", "en")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fallback
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fallback
	}
	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fallback
	}

	locality := body.City
	if locality == "" {
		locality = body.Locality
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{locality, body.PrincipalSubdivision, body.CountryName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
