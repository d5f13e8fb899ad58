package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	cfg "placeshare/src/configuration"
)

// ErrNoResult is returned when the provider resolves the address to nothing.
var ErrNoResult = errors.New("no result for address")

// Geocoder converts a free-text address into a coordinate pair.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// NominatimGeocoder resolves addresses against a Nominatim-compatible
// endpoint. No retry logic: a failed lookup is surfaced to the caller.
type NominatimGeocoder struct {
	host      string
	userAgent string
	client    *http.Client
}

func NewNominatimGeocoder(config cfg.GeoProperties) *NominatimGeocoder {
	return &NominatimGeocoder{
		host:      config.Host,
		userAgent: config.UserAgent,
		client:    &http.Client{Timeout: config.ReadTimeout},
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (Location, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", g.host, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("can not build geocoding request: %w", err)
	}
	// Nominatim rejects requests without an identifying agent.
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("can not reach geocoding provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("can not decode geocoding response: %w", err)
	}
	if len(results) == 0 {
		return Location{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("can not parse latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("can not parse longitude %q: %w", results[0].Lon, err)
	}
	return Location{Lat: lat, Lng: lng}, nil
}
