// Package geocode talks to the Nominatim (OpenStreetMap) HTTP API to resolve
// addresses to coordinates and back. Results are cached in Redis because the
// public instance enforces strict usage limits.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"restran/rdx"
)

var BaseURL = func() string {
	if v := os.Getenv("NOMINATIM_URL"); v != "" {
		return v
	}
	return "https://nominatim.openstreetmap.org"
}()

// Nominatim asks for a descriptive User-Agent on every request.
const userAgent = "restran/1.0"

const cacheTTL = 24 * time.Hour

var httpClient = &http.Client{Timeout: 10 * time.Second}

type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Forward resolves a free-text address to coordinates. A nil result with nil
// error means the address is simply unknown to the geocoder.
func Forward(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return nil, nil
	}

	cacheKey := "geocode:fwd:" + address
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		var res Result
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			return &res, nil
		}
	}

	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", BaseURL, url.QueryEscape(address))
	places, err := fetchPlaces(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, nil
	}

	res, err := toResult(places[0])
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := rdx.RdxSetWithTTL(cacheKey, string(data), cacheTTL); err != nil {
			log.Printf("Geocode cache write failed: %v", err)
		}
	}
	return res, nil
}

// Reverse resolves coordinates to a display name.
func Reverse(ctx context.Context, lat, lon float64) (string, error) {
	cacheKey := fmt.Sprintf("geocode:rev:%.5f:%.5f", lat, lon)
	if cached, err := rdx.RdxGet(cacheKey); err == nil && cached != "" {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", BaseURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var place nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return "", err
	}

	if place.DisplayName != "" {
		if err := rdx.RdxSetWithTTL(cacheKey, place.DisplayName, cacheTTL); err != nil {
			log.Printf("Geocode cache write failed: %v", err)
		}
	}
	return place.DisplayName, nil
}

func fetchPlaces(ctx context.Context, endpoint string) ([]nominatimPlace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, err
	}
	return places, nil
}

func toResult(p nominatimPlace) (*Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", p.Lon, err)
	}
	return &Result{Latitude: lat, Longitude: lon, DisplayName: p.DisplayName}, nil
}
