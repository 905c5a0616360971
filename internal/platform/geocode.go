package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable is returned when no geocoding endpoint is configured
var ErrUnavailable = errors.New("geocoding unavailable")

const geocodeTimeout = 10 * time.Second

// ReverseGeocoder resolves coordinates to a human-readable area label
// via a Nominatim-compatible endpoint. With no endpoint configured it
// stays registered but reports itself unavailable, so callers fall back
// to raw coordinates.
type ReverseGeocoder struct {
	endpoint string
	client   *http.Client
}

// NewReverseGeocoder creates a geocoder for the given endpoint. An
// empty endpoint yields an unavailable geocoder.
func NewReverseGeocoder(endpoint string) *ReverseGeocoder {
	return &ReverseGeocoder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: geocodeTimeout},
	}
}

// Name identifies the capability
func (g *ReverseGeocoder) Name() string {
	return "geocode"
}

// Available reports whether an endpoint is configured
func (g *ReverseGeocoder) Available() bool {
	return g.endpoint != ""
}

// HealthCheck verifies the endpoint responds
func (g *ReverseGeocoder) HealthCheck(ctx context.Context) error {
	if !g.Available() {
		return ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// Locate resolves latitude and longitude to an "Area, City" label.
// When the response carries no usable address parts, the coordinates
// themselves come back formatted to five decimal places.
func (g *ReverseGeocoder) Locate(ctx context.Context, lat, lon float64) (string, error) {
	if !g.Available() {
		return "", ErrUnavailable
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid geocode endpoint: %w", err)
	}

	q := u.Query()
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var body struct {
		Address struct {
			Suburb        string `json:"suburb"`
			Neighbourhood string `json:"neighbourhood"`
			Village       string `json:"village"`
			Town          string `json:"town"`
			CityDistrict  string `json:"city_district"`
			City          string `json:"city"`
			StateDistrict string `json:"state_district"`
			State         string `json:"state"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}

	addr := body.Address
	area := firstNonEmpty(addr.Suburb, addr.Neighbourhood, addr.Village, addr.Town, addr.CityDistrict, addr.City)
	city := firstNonEmpty(addr.City, addr.Town, addr.StateDistrict, addr.State)

	switch {
	case area != "" && city != "":
		return fmt.Sprintf("%s, %s", area, city), nil
	case area != "":
		return area, nil
	case city != "":
		return city, nil
	default:
		return fmt.Sprintf("%.5f, %.5f", lat, lon), nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
