// Package distance implements ports.DistanceProvider.
package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// NominatimConfig configures the geocoder client.
type NominatimConfig struct {
	BaseURL    string
	UserAgent  string
	RoadFactor float64 // multiplier from great-circle to driving distance
	RPS        float64 // request budget; the public instance allows 1/s
	HTTPClient *http.Client
}

// Nominatim geocodes both addresses with a Nominatim-compatible service and
// estimates the driving distance from the great-circle distance.
type Nominatim struct {
	baseURL    string
	userAgent  string
	roadFactor float64
	client     *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	known map[string]point
}

type point struct {
	lat, lon float64
}

func NewNominatim(cfg NominatimConfig) *Nominatim {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	factor := cfg.RoadFactor
	if factor <= 0 {
		factor = 1
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		roadFactor: factor,
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		known:      make(map[string]point),
	}
}

// Distance returns the estimated driving distance in kilometres.
func (n *Nominatim) Distance(ctx context.Context, origin, destination string) (float64, error) {
	from, err := n.geocode(ctx, origin)
	if err != nil {
		return 0, err
	}
	to, err := n.geocode(ctx, destination)
	if err != nil {
		return 0, err
	}
	return haversineKm(from, to) * n.roadFactor, nil
}

func (n *Nominatim) geocode(ctx context.Context, address string) (point, error) {
	key := strings.ToLower(strings.TrimSpace(address))
	n.mu.RLock()
	p, ok := n.known[key]
	n.mu.RUnlock()
	if ok {
		return p, nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return point{}, fmt.Errorf("geocode %q: %w", address, err)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return point{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return point{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return point{}, fmt.Errorf("geocode %q: geocoder returned status %d", address, resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return point{}, fmt.Errorf("geocode %q: decode: %w", address, err)
	}
	if len(results) == 0 {
		return point{}, fmt.Errorf("address not found by geocoder: %s", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return point{}, fmt.Errorf("geocode %q: bad latitude: %w", address, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return point{}, fmt.Errorf("geocode %q: bad longitude: %w", address, err)
	}

	p = point{lat: lat, lon: lon}
	n.mu.Lock()
	n.known[key] = p
	n.mu.Unlock()
	return p, nil
}
