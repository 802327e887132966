package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/civicpulse/civicpulse/config"
)

// Nominatim proxy for reverse and forward geocoding. Every call is a
// single bounded attempt; results are cached in-memory and in Redis since
// the same pin coordinates are resolved over and over while a user drags
// the map.

var geocodeClient = &http.Client{Timeout: 5 * time.Second}

// LocationMatch is one forward-search candidate. Nominatim returns
// coordinates as strings.
type LocationMatch struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type reverseResp struct {
	DisplayName string `json:"display_name"`
}

type geoCacheEntry struct {
	value     string
	expiresAt time.Time
}

var (
	geoCacheMu sync.RWMutex
	geoCache   = make(map[string]geoCacheEntry)
	geoTTL     = 24 * time.Hour
)

// ReverseGeocode resolves coordinates to a human-readable address. When
// Nominatim returns no display name the raw "lat, lng" pair is used as the
// fallback address.
func ReverseGeocode(ctx context.Context, lat, lng string) (string, error) {
	key := lat + "," + lng
	if v, ok := geoCacheGet(key); ok {
		return v, nil
	}
	if v, ok := geoRedisGet(ctx, key); ok {
		geoCacheSet(key, v)
		return v, nil
	}

	cfg := config.Get()
	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%s&lon=%s&zoom=18&addressdetails=1",
		cfg.GeocodeBaseURL, url.QueryEscape(lat), url.QueryEscape(lng))

	var body reverseResp
	if err := geocodeFetch(ctx, endpoint, &body); err != nil {
		return "", err
	}

	address := body.DisplayName
	if address == "" {
		address = key
	}
	geoCacheSet(key, address)
	geoRedisSet(ctx, key, address)
	return address, nil
}

// SearchLocation returns up to five forward-geocoding candidates for a
// free-text query, restricted to the configured country codes.
func SearchLocation(ctx context.Context, query string) ([]LocationMatch, error) {
	cfg := config.Get()
	endpoint := fmt.Sprintf("%s/search?format=json&addressdetails=1&limit=5&countrycodes=%s&accept-language=en&q=%s",
		cfg.GeocodeBaseURL, url.QueryEscape(cfg.GeocodeCountryCodes), url.QueryEscape(query))

	var matches []LocationMatch
	if err := geocodeFetch(ctx, endpoint, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func geocodeFetch(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", config.Get().GeocodeUserAgent)
	resp, err := geocodeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("geocode api non-200")
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func geoCacheGet(key string) (string, bool) {
	geoCacheMu.RLock()
	e, ok := geoCache[key]
	geoCacheMu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		geoCacheMu.Lock()
		delete(geoCache, key)
		geoCacheMu.Unlock()
		return "", false
	}
	return e.value, true
}

func geoCacheSet(key, value string) {
	geoCacheMu.Lock()
	geoCache[key] = geoCacheEntry{value: value, expiresAt: time.Now().Add(geoTTL)}
	geoCacheMu.Unlock()
}

func geoRedisKey(key string) string { return "geocode:" + key }

func geoRedisGet(ctx context.Context, key string) (string, bool) {
	cli := GetRedis()
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	val, err := cli.Get(ctx2, geoRedisKey(key)).Result()
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

func geoRedisSet(ctx context.Context, key, value string) {
	cli := GetRedis()
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_ = cli.Set(ctx2, geoRedisKey(key), value, geoTTL).Err()
}
