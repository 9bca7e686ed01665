// Package geocode resolves coordinates into human-readable addresses by
// walking a chain of public reverse-geocoding providers. The individual
// providers are unreliable (rate limits, demo keys, CORS proxies), so a
// failed or empty answer moves on to the next one; when the whole chain is
// exhausted the resolver falls back to a coordinate-derived string that
// needs no network at all.
package geocode

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

// Provider is one reverse-geocoding backend. Resolve returns an error for
// transport or payload problems and an empty string when the provider
// answered but had no usable address parts.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, lat, lon float64) (string, error)
}

type Resolver struct {
	providers []Provider
}

// NewResolver builds the default provider chain in priority order.
// userAgent is required by the Nominatim usage policy.
func NewResolver(userAgent string) *Resolver {
	httpc := &http.Client{Timeout: 10 * time.Second}
	return &Resolver{
		providers: []Provider{
			NewBigDataCloud(httpc),
			NewPositionstack(httpc),
			NewOpenCage(httpc),
			NewNominatim(httpc, userAgent),
		},
	}
}

// NewResolverWithProviders overrides the chain; used by tests and callers
// that want a subset.
func NewResolverWithProviders(providers ...Provider) *Resolver {
	return &Resolver{providers: providers}
}

// ResolveAddress never fails: it returns the first provider's address, or
// the offline fallback when every provider is down or empty.
func (r *Resolver) ResolveAddress(ctx context.Context, lat, lon float64) string {
	for _, p := range r.providers {
		addr, err := p.Resolve(ctx, lat, lon)
		if err != nil {
			log.Printf("[geocode] %s: %v", p.Name(), err)
			continue
		}
		if addr != "" {
			return addr
		}
	}
	log.Printf("[geocode] all providers failed for (%f, %f), using coordinates", lat, lon)
	return FallbackAddress(lat, lon)
}

// FallbackAddress derives a stable address string purely from the
// coordinates: absolute value plus hemisphere label.
func FallbackAddress(lat, lon float64) string {
	latDir := "Norte"
	if lat < 0 {
		latDir = "Sul"
	}
	lonDir := "Leste"
	if lon < 0 {
		lonDir = "Oeste"
	}
	return fmt.Sprintf("Localização: %.4f°%s, %.4f°%s", math.Abs(lat), latDir, math.Abs(lon), lonDir)
}
