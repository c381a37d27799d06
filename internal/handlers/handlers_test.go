package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitfr/internal/models"
)

var testApp *fiber.App

// serveUpstream fakes the region's GraphQL endpoint, dispatching on the
// query document in the request body.
func serveUpstream(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	query := string(body)

	switch {
	case strings.Contains(query, "numItineraries"):
		io.WriteString(w, `{"data":{"plan":{"itineraries":[
			{"duration":1200,"legs":[{"mode":"SUBWAY","transitLeg":true,
			 "from":{"name":"A","lat":48.85,"lon":2.35},
			 "to":{"name":"B","lat":48.86,"lon":2.36},
			 "route":{"gtfsId":"IDF:C01","shortName":"1","mode":"SUBWAY"}}]}
		]}}}`)
	case strings.Contains(query, "stoptimesWithoutPatterns"):
		io.WriteString(w, `{"data":{"stop":{
			"gtfsId":"IDF:S1","name":"Châtelet","lat":48.858,"lon":2.347,
			"routes":[
				{"gtfsId":"r3","shortName":"38","mode":"BUS"},
				{"gtfsId":"r1","shortName":"1","mode":"SUBWAY"},
				{"gtfsId":"r2","shortName":"T3a","mode":"TRAM"}
			],
			"stoptimesWithoutPatterns":[]
		}}}`)
	default:
		io.WriteString(w, `{"data":{}}`)
	}
}

func TestMain(m *testing.M) {
	upstream := httptest.NewServer(http.HandlerFunc(serveUpstream))

	// Setup wires once per process; the DB-backed handlers are not under
	// test here and never touch the nil connection.
	Setup(nil, []models.Region{
		{ID: "idf", Name: "Ile-de-France", APIURL: upstream.URL + "/graphiql", IsActive: true},
	})

	testApp = fiber.New()
	testApp.Get("/api/regions/:regionID/stops/:stopID", GetStopDetails)
	testApp.Get("/api/regions/:regionID/plan", GetTripPlan)

	code := m.Run()
	upstream.Close()
	os.Exit(code)
}

func TestGetStopDetailsSortsRoutesByMode(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/regions/idf/stops/IDF:S1", nil)
	resp, err := testApp.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Stop struct {
			Routes []models.Route `json:"routes"`
		} `json:"stop"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Stop.Routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(payload.Stop.Routes))
	}
	got := []string{payload.Stop.Routes[0].Mode, payload.Stop.Routes[1].Mode, payload.Stop.Routes[2].Mode}
	want := []string{"SUBWAY", "TRAM", "BUS"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("route mode order = %v, want %v", got, want)
		}
	}
}

func TestGetTripPlanReturnsItineraries(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/regions/idf/plan?from_lat=48.85&from_lon=2.35&to_lat=48.86&to_lon=2.36", nil)
	resp, err := testApp.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		Itineraries []models.Itinerary `json:"itineraries"`
		Count       int                `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || len(payload.Itineraries) != 1 {
		t.Fatalf("count = %d, itineraries = %d, want 1", payload.Count, len(payload.Itineraries))
	}
	legs := payload.Itineraries[0].Legs
	if len(legs) != 1 || legs[0].Route == nil || legs[0].Route.GtfsID != "IDF:C01" {
		t.Errorf("unexpected legs: %+v", legs)
	}
}

func TestGetTripPlanRequiresCoordinates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/regions/idf/plan?from_lat=48.85&from_lon=2.35", nil)
	resp, err := testApp.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetTripPlanUnknownRegion(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/api/regions/atlantis/plan?from_lat=48.85&from_lon=2.35&to_lat=48.86&to_lon=2.36", nil)
	resp, err := testApp.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
