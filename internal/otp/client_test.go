package otp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/transitfr/internal/cache"
	"github.com/yourorg/transitfr/internal/models"
)

func testRegion(apiURL string) models.Region {
	return models.Region{ID: "idf", Name: "Ile-de-France", APIURL: apiURL, IsActive: true}
}

func TestGetFeedsParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"feeds":[
			{"feedId":"IDF","agencies":[{"id":"1","gtfsId":"IDF:RATP","name":"RATP"}]},
			{"feedId":"OPT","agencies":[]}
		]}}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	feeds := client.GetFeeds(context.Background())

	if len(feeds) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(feeds))
	}
	if feeds[0].FeedID != "IDF" {
		t.Errorf("expected feedId IDF, got %q", feeds[0].FeedID)
	}
	if len(feeds[0].Agencies) != 1 || feeds[0].Agencies[0].GtfsID != "IDF:RATP" {
		t.Errorf("unexpected agencies: %+v", feeds[0].Agencies)
	}
}

func TestGetFeedsGraphQLErrorsYieldEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"internal server error"}]}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	feeds := client.GetFeeds(context.Background())

	if feeds == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(feeds) != 0 {
		t.Errorf("expected 0 feeds, got %d", len(feeds))
	}
}

func TestGetFeedsMissingDataYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	if feeds := client.GetFeeds(context.Background()); len(feeds) != 0 {
		t.Errorf("expected 0 feeds, got %d", len(feeds))
	}
}

func TestGetFeedsTransportErrorYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	if feeds := client.GetFeeds(context.Background()); len(feeds) != 0 {
		t.Errorf("expected 0 feeds, got %d", len(feeds))
	}
}

func TestGraphiqlSuffixRewrite(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data":{"feeds":[]}}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL+"/graphiql"), nil)
	client.GetFeeds(context.Background())

	want := "/otp/routers/default/index/graphql"
	if gotPath != want {
		t.Errorf("expected request path %q, got %q", want, gotPath)
	}
}

func TestGetAgenciesByFeedFiltersClientSide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"feeds":[
			{"feedId":"IDF","agencies":[{"id":"1","gtfsId":"IDF:RATP","name":"RATP"},{"id":"2","gtfsId":"IDF:SNCF","name":"SNCF"}]},
			{"feedId":"OPT","agencies":[{"id":"3","gtfsId":"OPT:KEO","name":"Keolis"}]}
		]}}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)

	agencies := client.GetAgenciesByFeed(context.Background(), "IDF")
	if len(agencies) != 2 {
		t.Fatalf("expected 2 agencies for IDF, got %d", len(agencies))
	}

	if agencies := client.GetAgenciesByFeed(context.Background(), "UNKNOWN"); len(agencies) != 0 {
		t.Errorf("expected 0 agencies for unknown feed, got %d", len(agencies))
	}
}

func TestGetRouteDetailsNullRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"route":null}}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	if route := client.GetRouteDetails(context.Background(), "IDF:C01"); route != nil {
		t.Errorf("expected nil route, got %+v", route)
	}
}

func TestPlanTripParsesItineraries(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, `{"data":{"plan":{"itineraries":[
			{"duration":1800,"walkDistance":350,"walkTime":300,"waitingTime":120,"legs":[
				{"mode":"WALK","duration":300,"distance":350,"transitLeg":false,
				 "from":{"name":"Origin","lat":48.85,"lon":2.35},
				 "to":{"name":"Châtelet","lat":48.858,"lon":2.347,"stop":{"gtfsId":"IDF:S1","name":"Châtelet"}}},
				{"mode":"SUBWAY","duration":1380,"distance":5200,"transitLeg":true,"realTime":true,
				 "startTime":{"scheduledTime":"2026-03-02T10:00:00+01:00","estimated":{"time":"2026-03-02T10:02:00+01:00","delay":"PT2M"}},
				 "from":{"name":"Châtelet","lat":48.858,"lon":2.347},
				 "to":{"name":"La Défense","lat":48.89,"lon":2.24},
				 "route":{"gtfsId":"IDF:C01","shortName":"1","mode":"SUBWAY"},
				 "trip":{"gtfsId":"IDF:T1","tripHeadsign":"La Défense"},
				 "legGeometry":{"points":"abc"}}
			]}
		]}}}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	itineraries := client.PlanTrip(context.Background(),
		models.Coordinate{Lat: 48.85, Lon: 2.35},
		models.Coordinate{Lat: 48.89, Lon: 2.24},
		when,
	)

	if len(itineraries) != 1 {
		t.Fatalf("expected 1 itinerary, got %d", len(itineraries))
	}
	it := itineraries[0]
	if it.Duration != 1800 || len(it.Legs) != 2 {
		t.Errorf("unexpected itinerary: %+v", it)
	}
	if it.Legs[1].Route == nil || it.Legs[1].Route.GtfsID != "IDF:C01" {
		t.Errorf("transit leg route lost: %+v", it.Legs[1])
	}
	if it.Legs[1].StartTime.Estimated == nil {
		t.Error("estimated start time lost")
	}
	if !strings.Contains(gotBody, `"date":"2026-03-02"`) || !strings.Contains(gotBody, `"time":"10:00:00"`) {
		t.Errorf("departure variables missing from request: %s", gotBody)
	}
}

func TestPlanTripFailureYieldsEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"no path found"}]}`)
	}))
	defer server.Close()

	client := NewClient(testRegion(server.URL), nil)
	itineraries := client.PlanTrip(context.Background(),
		models.Coordinate{Lat: 48.85, Lon: 2.35},
		models.Coordinate{Lat: 48.89, Lon: 2.24},
		time.Now(),
	)
	if itineraries == nil || len(itineraries) != 0 {
		t.Errorf("expected empty itineraries, got %+v", itineraries)
	}
}

func TestGetFeedsUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"data":{"feeds":[{"feedId":"IDF"}]}}`)
	}))
	defer server.Close()

	registry := cache.NewRegistry()
	defer registry.Stop()

	client := NewClient(testRegion(server.URL), registry)
	client.GetFeeds(context.Background())
	feeds := client.GetFeeds(context.Background())

	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
	if len(feeds) != 1 || feeds[0].FeedID != "IDF" {
		t.Errorf("unexpected cached feeds: %+v", feeds)
	}
}
