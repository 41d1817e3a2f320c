package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Simplici0/movequote/internal/calculator"
)

const (
	defaultBaseURL = "https://api.geoapify.com"
	metersPerMile  = 1609.344
)

// Geoapify talks to the Geoapify geocoding and routing APIs.
type Geoapify struct {
	apiKey      string
	baseURL     string
	countryCode string
	client      *http.Client
}

type Option func(*Geoapify)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(g *Geoapify) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *Geoapify) { g.client = c }
}

func NewGeoapify(apiKey string, opts ...Option) *Geoapify {
	g := &Geoapify{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		countryCode: "gb",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type geocodeResult struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	HouseNumber  string  `json:"housenumber"`
	Street       string  `json:"street"`
	City         string  `json:"city"`
	Postcode     string  `json:"postcode"`
	AddressLine1 string  `json:"address_line1"`
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type routingResponse struct {
	Features []struct {
		Properties struct {
			Distance float64 `json:"distance"`
		} `json:"properties"`
	} `json:"features"`
}

func (g *Geoapify) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("apiKey", g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build geoapify request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("call geoapify %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read geoapify %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geoapify %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode geoapify %s response: %w", path, err)
	}
	return nil
}

func (g *Geoapify) geocode(ctx context.Context, addr calculator.Address) (geocodeResult, error) {
	params := url.Values{}
	params.Set("text", query(addr))
	params.Set("format", "json")
	params.Set("limit", "1")
	if g.countryCode != "" {
		params.Set("filter", "countrycode:"+g.countryCode)
	}

	var resp geocodeResponse
	if err := g.get(ctx, "/v1/geocode/search", params, &resp); err != nil {
		return geocodeResult{}, err
	}
	if len(resp.Results) == 0 {
		return geocodeResult{}, fmt.Errorf("geocode %q: %w", query(addr), ErrNoMatch)
	}
	return resp.Results[0], nil
}

// Normalize replaces the user's lines with the geocoder's canonical ones.
// Fields the geocoder does not return keep the user's value.
func (g *Geoapify) Normalize(ctx context.Context, addr calculator.Address) (calculator.Address, error) {
	res, err := g.geocode(ctx, addr)
	if err != nil {
		return addr, err
	}

	out := addr
	line1 := res.AddressLine1
	if line1 == "" && res.Street != "" {
		line1 = strings.TrimSpace(res.HouseNumber + " " + res.Street)
	}
	if line1 != "" {
		out.Line1 = line1
	}
	if res.City != "" {
		out.City = res.City
	}
	if res.Postcode != "" {
		out.Postcode = strings.ToUpper(res.Postcode)
	}
	return out, nil
}

// Mileage geocodes both addresses and returns the driving distance in miles.
func (g *Geoapify) Mileage(ctx context.Context, from, to calculator.Address) (float64, error) {
	a, err := g.geocode(ctx, from)
	if err != nil {
		return 0, err
	}
	b, err := g.geocode(ctx, to)
	if err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("waypoints", fmt.Sprintf("%f,%f|%f,%f", a.Lat, a.Lon, b.Lat, b.Lon))
	params.Set("mode", "drive")
	params.Set("units", "metric")

	var resp routingResponse
	if err := g.get(ctx, "/v1/routing", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Features) == 0 {
		return 0, fmt.Errorf("route %q to %q: %w", query(from), query(to), ErrNoMatch)
	}
	return resp.Features[0].Properties.Distance / metersPerMile, nil
}
