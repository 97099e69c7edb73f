package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/npsguess/internal/geo"
	"github.com/robalobadob/npsguess/internal/obs"
	"github.com/robalobadob/npsguess/internal/park"
)

const (
	DefaultNPSBaseURL = "https://developer.nps.gov/api/v1"
	DefaultNPSLimit   = 500
)

// NPSClient reads parks from the NPS Data API (/parks endpoint).
type NPSClient struct {
	baseURL string
	apiKey  string
	limit   int
	session *http.Client
	backoff time.Duration
}

// NewNPSClient builds a client. An empty baseURL selects the public API and
// a non-positive limit selects DefaultNPSLimit.
func NewNPSClient(baseURL, apiKey string, limit int) *NPSClient {
	if baseURL == "" {
		baseURL = DefaultNPSBaseURL
	}
	if limit <= 0 {
		limit = DefaultNPSLimit
	}
	return &NPSClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limit:   limit,
		session: &http.Client{Timeout: 20 * time.Second},
		backoff: 200 * time.Millisecond,
	}
}

func (c *NPSClient) Name() string { return SourceNPS }

type npsParksResponse struct {
	Total string       `json:"total"`
	Data  []npsParkDTO `json:"data"`
}

type npsParkDTO struct {
	ParkCode    string `json:"parkCode"`
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	States      string `json:"states"`
	Addresses   []struct {
		City      string `json:"city"`
		StateCode string `json:"stateCode"`
		Type      string `json:"type"`
	} `json:"addresses"`
	Images []struct {
		URL     string `json:"url"`
		AltText string `json:"altText"`
		Caption string `json:"caption"`
	} `json:"images"`
}

// FetchParks downloads the park list. Parks without an image or a state are
// dropped; parks with unparsable coordinates are kept without a Location.
func (c *NPSClient) FetchParks(ctx context.Context) (_ []park.Park, err error) {
	defer obs.Time(ctx, "catalog.nps.FetchParks")(&err)

	q := url.Values{}
	q.Set("fields", "images,addresses")
	q.Set("limit", strconv.Itoa(c.limit))
	endpoint := c.baseURL + "/parks?" + q.Encode()

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		return nil, fmt.Errorf("nps parks request: %w", err)
	}
	defer resp.Body.Close()

	var payload npsParksResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("nps parks decode: %w", err)
	}

	out := make([]park.Park, 0, len(payload.Data))
	for _, d := range payload.Data {
		if p, ok := d.toPark(); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (d npsParkDTO) toPark() (park.Park, bool) {
	if len(d.Images) == 0 || strings.TrimSpace(d.Images[0].URL) == "" {
		return park.Park{}, false
	}

	city, state := d.place()
	if state == "" {
		return park.Park{}, false
	}

	img := d.Images[0]
	p := park.Park{
		Code:         d.ParkCode,
		Name:         d.FullName,
		City:         city,
		State:        state,
		Location:     parseLocation(d.Latitude, d.Longitude),
		ImageURL:     img.URL,
		ImageAlt:     img.AltText,
		ImageCaption: img.Caption,
		Description:  d.Description,
		URL:          d.URL,
	}
	return park.Normalize(p), p.Name != ""
}

// place prefers the physical address, then the first address, then the
// first entry of the comma-separated states list.
func (d npsParkDTO) place() (city, state string) {
	for _, a := range d.Addresses {
		if strings.EqualFold(a.Type, "Physical") && a.StateCode != "" {
			return a.City, a.StateCode
		}
	}
	if len(d.Addresses) > 0 && d.Addresses[0].StateCode != "" {
		return d.Addresses[0].City, d.Addresses[0].StateCode
	}
	if s, _, _ := strings.Cut(d.States, ","); s != "" {
		return "", strings.TrimSpace(s)
	}
	return "", ""
}

func parseLocation(lat, lon string) *geo.Point {
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lo, err2 := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	p := geo.Point{Lat: la, Lon: lo}
	if !p.Valid() {
		return nil
	}
	return &p
}
