package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const npsFixture = `{
  "total": "4",
  "data": [
    {
      "parkCode": "yell",
      "fullName": "Yellowstone National Park",
      "description": "Geysers.",
      "url": "https://www.nps.gov/yell/index.htm",
      "latitude": "44.59824417",
      "longitude": "-110.5471695",
      "states": "ID,MT,WY",
      "addresses": [
        {"city": "Gardiner", "stateCode": "MT", "type": "Mailing"},
        {"city": "Yellowstone National Park", "stateCode": "WY", "type": "Physical"}
      ],
      "images": [{"url": "https://x/yell.jpg", "altText": "Old Faithful", "caption": "Eruption"}]
    },
    {
      "parkCode": "noim",
      "fullName": "No Image Site",
      "latitude": "40.0",
      "longitude": "-100.0",
      "addresses": [{"city": "Somewhere", "stateCode": "KS", "type": "Physical"}],
      "images": []
    },
    {
      "parkCode": "nost",
      "fullName": "No State Site",
      "latitude": "40.0",
      "longitude": "-100.0",
      "addresses": [],
      "images": [{"url": "https://x/nost.jpg"}]
    },
    {
      "parkCode": "nocd",
      "fullName": "No Coordinates Trail",
      "latitude": "",
      "longitude": "",
      "states": "VA,NC",
      "addresses": [],
      "images": [{"url": "https://x/nocd.jpg"}]
    }
  ]
}`

func newTestClient(url string) *NPSClient {
	c := NewNPSClient(url, "test-key", 0)
	c.backoff = time.Millisecond
	return c
}

func TestNPSClientFetchParks(t *testing.T) {
	var gotKey, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(npsFixture))
	}))
	defer srv.Close()

	parks, err := newTestClient(srv.URL).FetchParks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotPath != "/parks" {
		t.Errorf("path = %q, want /parks", gotPath)
	}
	if gotQuery != "fields=images%2Caddresses&limit=500" {
		t.Errorf("query = %q", gotQuery)
	}

	if len(parks) != 2 {
		t.Fatalf("got %d parks, want 2 (image-less and state-less dropped): %+v", len(parks), parks)
	}

	y := parks[0]
	if y.Code != "yell" || y.Name != "Yellowstone National Park" {
		t.Errorf("unexpected park: %+v", y)
	}
	if y.City != "Yellowstone National Park" || y.State != "WY" || y.StateName != "Wyoming" {
		t.Errorf("physical address not preferred: city=%q state=%q stateName=%q", y.City, y.State, y.StateName)
	}
	if y.Location == nil || y.Location.Lat != 44.59824417 || y.Location.Lon != -110.5471695 {
		t.Errorf("location = %+v", y.Location)
	}
	if y.ImageURL != "https://x/yell.jpg" || y.ImageAlt != "Old Faithful" || y.ImageCaption != "Eruption" {
		t.Errorf("image fields = %q %q %q", y.ImageURL, y.ImageAlt, y.ImageCaption)
	}

	n := parks[1]
	if n.Code != "nocd" || n.Location != nil {
		t.Errorf("expected nocd without location, got %+v", n)
	}
	if n.State != "VA" {
		t.Errorf("state from states list = %q, want VA", n.State)
	}
}

func TestNPSClientRetriesServiceUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(npsFixture))
	}))
	defer srv.Close()

	parks, err := newTestClient(srv.URL).FetchParks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(parks) != 2 {
		t.Errorf("got %d parks", len(parks))
	}
}

func TestNPSClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchParks(context.Background())
	var he *HTTPStatusError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("err = %v, want HTTPStatusError 403", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestNPSClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchParks(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 4 {
		t.Errorf("calls = %d, want 4", calls.Load())
	}
}

func TestNPSClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchParks(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSeedProviderEmbedded(t *testing.T) {
	parks, err := NewSeedProvider("").FetchParks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var haveYell, haveYose bool
	for _, p := range parks {
		switch p.Code {
		case "yell":
			haveYell = p.Location != nil && p.HasImage()
		case "yose":
			haveYose = p.Location != nil && p.HasImage()
		}
		if p.StateName == "" {
			t.Errorf("%s: state name not derived", p.Code)
		}
	}
	if !haveYell || !haveYose {
		t.Errorf("seed catalog missing Yellowstone/Yosemite (yell=%v yose=%v)", haveYell, haveYose)
	}
}

func TestDecodeParks(t *testing.T) {
	raw := []byte(`[
		{"name": " Zion ", "state": "ut", "location": {"lat": 37.3, "lon": -113.0}, "imageUrl": "z.jpg"},
		{"name": "", "state": "CA"},
		{"name": "Broken", "location": {"lat": 123, "lon": 0}}
	]`)
	parks, err := DecodeParks(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parks) != 2 {
		t.Fatalf("got %d parks, want 2", len(parks))
	}
	if parks[0].Name != "Zion" || parks[0].State != "UT" || parks[0].StateName != "Utah" {
		t.Errorf("not normalized: %+v", parks[0])
	}
	if parks[1].Location != nil {
		t.Error("out-of-range location should be dropped")
	}

	if _, err := DecodeParks([]byte(`[]`)); err == nil {
		t.Error("empty catalog should be an error")
	}
}
