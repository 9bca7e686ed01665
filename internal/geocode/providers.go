package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	bigDataCloudBaseURL  = "https://api.bigdatacloud.net"
	positionstackBaseURL = "http://api.positionstack.com"
	openCageBaseURL      = "https://api.opencagedata.com"
	nominatimBaseURL     = "https://nominatim.openstreetmap.org"
	allOriginsProxyURL   = "https://api.allorigins.win/get?url="
)

// joinParts builds the comma-joined address from ordered parts, skipping
// empties.
func joinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func getJSON(ctx context.Context, httpc *http.Client, rawURL string, headers map[string]string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// ===== BigDataCloud =====

// BigDataCloud's client API needs no key and answers in Portuguese when
// asked; it is the first choice for that reason.
type BigDataCloud struct {
	BaseURL string
	httpc   *http.Client
}

func NewBigDataCloud(httpc *http.Client) *BigDataCloud {
	return &BigDataCloud{BaseURL: bigDataCloudBaseURL, httpc: httpc}
}

func (b *BigDataCloud) Name() string { return "bigdatacloud" }

func (b *BigDataCloud) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u := fmt.Sprintf("%s/data/reverse-geocode-client?latitude=%f&longitude=%f&localityLanguage=pt", b.BaseURL, lat, lon)

	var payload struct {
		Street               string `json:"street"`
		StreetNumber         string `json:"streetNumber"`
		Neighbourhood        string `json:"neighbourhood"`
		District             string `json:"district"`
		Locality             string `json:"locality"`
		City                 string `json:"city"`
		PrincipalSubdivision string `json:"principalSubdivision"`
		CountryName          string `json:"countryName"`
	}
	if err := getJSON(ctx, b.httpc, u, nil, &payload); err != nil {
		return "", err
	}

	number := ""
	if payload.StreetNumber != "" {
		number = "nº " + payload.StreetNumber
	}
	return joinParts(
		payload.Street,
		number,
		payload.Neighbourhood,
		payload.District,
		payload.Locality,
		payload.City,
		payload.PrincipalSubdivision,
		payload.CountryName,
	), nil
}

// ===== Positionstack =====

type Positionstack struct {
	BaseURL   string
	AccessKey string
	httpc     *http.Client
}

func NewPositionstack(httpc *http.Client) *Positionstack {
	return &Positionstack{BaseURL: positionstackBaseURL, AccessKey: "free", httpc: httpc}
}

func (p *Positionstack) Name() string { return "positionstack" }

func (p *Positionstack) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	u := fmt.Sprintf("%s/v1/reverse?access_key=%s&query=%f,%f&limit=1&output=json", p.BaseURL, p.AccessKey, lat, lon)

	var payload struct {
		Data []struct {
			Street        string `json:"street"`
			Number        string `json:"number"`
			Neighbourhood string `json:"neighbourhood"`
			Locality      string `json:"locality"`
			Region        string `json:"region"`
			Country       string `json:"country"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.httpc, u, nil, &payload); err != nil {
		return "", err
	}
	if len(payload.Data) == 0 {
		return "", nil
	}

	loc := payload.Data[0]
	number := ""
	if loc.Number != "" {
		number = "nº " + loc.Number
	}
	return joinParts(loc.Street, number, loc.Neighbourhood, loc.Locality, loc.Region, loc.Country), nil
}

// ===== OpenCage (proxied) =====

// OpenCage sits behind the allorigins proxy because the demo key endpoint
// rejects browser-originated requests; the proxy wraps the real payload in
// a {"contents": "..."} envelope.
type OpenCage struct {
	ProxyURL string
	BaseURL  string
	Key      string
	httpc    *http.Client
}

func NewOpenCage(httpc *http.Client) *OpenCage {
	return &OpenCage{ProxyURL: allOriginsProxyURL, BaseURL: openCageBaseURL, Key: "demo-key", httpc: httpc}
}

func (o *OpenCage) Name() string { return "opencage" }

func (o *OpenCage) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	target := fmt.Sprintf("%s/geocode/v1/json?q=%f+%f&key=%s&language=pt&pretty=1&no_annotations=1", o.BaseURL, lat, lon, o.Key)

	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := getJSON(ctx, o.httpc, o.ProxyURL+url.QueryEscape(target), nil, &envelope); err != nil {
		return "", err
	}

	var payload struct {
		Results []struct {
			Formatted  string `json:"formatted"`
			Components struct {
				Road          string `json:"road"`
				HouseNumber   string `json:"house_number"`
				Neighbourhood string `json:"neighbourhood"`
				Suburb        string `json:"suburb"`
				City          string `json:"city"`
				State         string `json:"state"`
				Country       string `json:"country"`
			} `json:"components"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(envelope.Contents), &payload); err != nil {
		return "", err
	}
	if len(payload.Results) == 0 {
		return "", nil
	}

	result := payload.Results[0]
	if result.Formatted != "" {
		return result.Formatted, nil
	}

	c := result.Components
	number := ""
	if c.HouseNumber != "" {
		number = "nº " + c.HouseNumber
	}
	return joinParts(c.Road, number, c.Neighbourhood, c.Suburb, c.City, c.State, c.Country), nil
}

// ===== Nominatim (proxied) =====

type Nominatim struct {
	ProxyURL  string
	BaseURL   string
	UserAgent string
	httpc     *http.Client
}

func NewNominatim(httpc *http.Client, userAgent string) *Nominatim {
	return &Nominatim{ProxyURL: allOriginsProxyURL, BaseURL: nominatimBaseURL, UserAgent: userAgent, httpc: httpc}
}

func (n *Nominatim) Name() string { return "nominatim" }

func (n *Nominatim) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	target := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&zoom=18&addressdetails=1&accept-language=pt", n.BaseURL, lat, lon)

	headers := map[string]string{"User-Agent": n.UserAgent}

	var envelope struct {
		Contents string `json:"contents"`
	}
	if err := getJSON(ctx, n.httpc, n.ProxyURL+url.QueryEscape(target), headers, &envelope); err != nil {
		return "", err
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal([]byte(envelope.Contents), &payload); err != nil {
		return "", err
	}
	return payload.DisplayName, nil
}
