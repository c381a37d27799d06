package transit

import (
	"testing"
	"time"

	"github.com/yourorg/transitfr/internal/models"
)

func TestSortRoutesTypeThenNumericShortName(t *testing.T) {
	routes := []models.Route{
		{Type: 3, ShortName: "10"},
		{Type: 0, ShortName: "2"},
		{Type: 3, ShortName: "2"},
	}
	SortRoutes(routes)

	want := []struct {
		typ  int
		name string
	}{{0, "2"}, {3, "2"}, {3, "10"}}
	for i, w := range want {
		if routes[i].Type != w.typ || routes[i].ShortName != w.name {
			t.Errorf("routes[%d] = {%d %q}, want {%d %q}", i, routes[i].Type, routes[i].ShortName, w.typ, w.name)
		}
	}
}

func TestSortRoutesMixedShortNames(t *testing.T) {
	routes := []models.Route{
		{Type: 3, ShortName: "A"},
		{Type: 3, ShortName: "12"},
		{Type: 3, ShortName: "3"},
	}
	SortRoutes(routes)
	got := []string{routes[0].ShortName, routes[1].ShortName, routes[2].ShortName}
	want := []string{"3", "12", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortRoutesByModePrecedence(t *testing.T) {
	routes := []models.Route{
		{Mode: "BUS", ShortName: "1"},
		{Mode: "SUBWAY", ShortName: "4"},
		{Mode: "TRAM", ShortName: "T1"},
		{Mode: "HOVERCRAFT", ShortName: "X"},
		{Mode: "RAIL", ShortName: "R"},
	}
	SortRoutesByMode(routes)
	got := []string{routes[0].Mode, routes[1].Mode, routes[2].Mode, routes[3].Mode, routes[4].Mode}
	want := []string{"SUBWAY", "RAIL", "TRAM", "BUS", "HOVERCRAFT"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDedupNetworksMergesByDisplayName(t *testing.T) {
	networks := []models.Network{
		{ID: "idf:SNCF", FeedID: "SNCF", DisplayName: "SNCF", IsAvailable: true,
			Operators: []models.Operator{{GtfsID: "sncf:1", Name: "SNCF Voyageurs"}}},
		{ID: "naq:SNCF", FeedID: "SNCF", DisplayName: "SNCF", IsAvailable: true,
			Operators: []models.Operator{{GtfsID: "sncf:1", Name: "SNCF Voyageurs"}, {GtfsID: "sncf:2", Name: "Intercités"}}},
		{ID: "idf:DOWN", FeedID: "DOWN", DisplayName: "Down", IsAvailable: false},
	}
	out := DedupNetworks(networks)
	if len(out) != 1 {
		t.Fatalf("got %d networks, want 1", len(out))
	}
	if out[0].ID != "idf:SNCF" {
		t.Errorf("first occurrence should win, got %s", out[0].ID)
	}
	if len(out[0].Operators) != 2 {
		t.Errorf("operators = %d, want merged 2", len(out[0].Operators))
	}
}

func TestDedupNetworksFallsBackToFeedID(t *testing.T) {
	networks := []models.Network{
		{ID: "bre:STAR", FeedID: "STAR", IsAvailable: true},
		{ID: "pdl:STAR", FeedID: "STAR", IsAvailable: true},
	}
	if out := DedupNetworks(networks); len(out) != 1 {
		t.Errorf("networks sharing a feed id with no display name should merge, got %d", len(out))
	}
}

func TestDelay(t *testing.T) {
	// Scheduled 10:00, realtime 10:03.
	realtime := models.Stoptime{
		ScheduledDeparture: 36000,
		RealtimeDeparture:  36180,
		DepartureDelay:     180,
		Realtime:           true,
	}
	if d := Delay(realtime); d == nil || *d != 3 {
		t.Errorf("delay = %v, want 3", d)
	}

	scheduled := models.Stoptime{ScheduledDeparture: 36000, DepartureDelay: 180}
	if d := Delay(scheduled); d != nil {
		t.Errorf("delay without realtime = %v, want nil", d)
	}
}

func TestDelayComputedFromDepartureTimes(t *testing.T) {
	// Some feeds report a delay field that disagrees with the departure
	// times; the times win.
	st := models.Stoptime{
		ScheduledDeparture: 36000,
		RealtimeDeparture:  36300,
		DepartureDelay:     0,
		Realtime:           true,
	}
	if d := Delay(st); d == nil || *d != 5 {
		t.Errorf("delay = %v, want 5 from departure times", d)
	}
}

func TestSplitRegional(t *testing.T) {
	networks := []models.Network{
		{ID: "bre:BREIZHGO", FeedID: "BREIZHGO", DisplayName: "BreizhGo", IsAvailable: true},
		{ID: "idf:IDFM", FeedID: "IDFM", DisplayName: "Île-de-France Mobilités", IsAvailable: true,
			Operators: []models.Operator{{GtfsID: "idfm:ratp", Name: "RATP"}}},
		{ID: "naq:SNCF", FeedID: "SNCF", DisplayName: "SNCF", IsAvailable: true,
			Operators: []models.Operator{{GtfsID: "sncf:ter", Name: "TER Nouvelle-Aquitaine"}}},
	}
	regional, urban := SplitRegional(networks)

	if len(regional) != 2 {
		t.Fatalf("regional = %d networks, want 2", len(regional))
	}
	if regional[0].ID != "bre:BREIZHGO" || regional[1].ID != "naq:SNCF" {
		t.Errorf("regional = %v", regional)
	}
	if len(urban) != 1 || urban[0].ID != "idf:IDFM" {
		t.Errorf("urban = %v", urban)
	}
}

func TestNextDepartures(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(10 * time.Hour)

	stoptimes := []models.Stoptime{
		{ServiceDay: day.Unix(), ScheduledDeparture: 9 * 3600},                                                     // gone
		{ServiceDay: day.Unix(), ScheduledDeparture: 11 * 3600},
		{ServiceDay: day.Unix(), ScheduledDeparture: 10*3600 + 600, RealtimeDeparture: 10*3600 + 900, Realtime: true, DepartureDelay: 300},
		{ServiceDay: day.Unix(), ScheduledDeparture: 12 * 3600},
	}

	out := NextDepartures(stoptimes, now, 2)
	if len(out) != 2 {
		t.Fatalf("got %d departures, want 2", len(out))
	}
	if !out[0].Time.Equal(day.Add(10*time.Hour + 15*time.Minute)) {
		t.Errorf("first departure = %v, want realtime 10:15", out[0].Time)
	}
	if !out[0].Realtime || out[0].Delay == nil || *out[0].Delay != 5 {
		t.Errorf("first departure realtime fields = %+v", out[0])
	}
	if !out[1].Time.Equal(day.Add(11 * time.Hour)) {
		t.Errorf("second departure = %v, want 11:00", out[1].Time)
	}
}

func TestGroupDeparturesByRoute(t *testing.T) {
	a := &models.Route{GtfsID: "r:a", ShortName: "A"}
	b := &models.Route{GtfsID: "r:b", ShortName: "B"}
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	departures := []Departure{
		{Time: base.Add(5 * time.Minute), Route: b},
		{Time: base.Add(2 * time.Minute), Route: a},
		{Time: base.Add(8 * time.Minute), Route: a},
		{Time: base.Add(9 * time.Minute)},
	}
	out := GroupDeparturesByRoute(departures)
	if len(out) != 3 {
		t.Fatalf("got %d groups, want 3", len(out))
	}
	if out[0].Route != a || len(out[0].Departures) != 2 {
		t.Errorf("first group should be route A with 2 departures, got %+v", out[0])
	}
	if out[1].Route != b {
		t.Errorf("second group should be route B")
	}
	if out[2].Route != nil {
		t.Errorf("routeless group should sort last")
	}
}

func TestSplitLongName(t *testing.T) {
	cases := []struct {
		in           string
		origin, dest string
	}{
		{"Gare de Lyon - Place d'Italie", "Gare de Lyon", "Place d'Italie"},
		{"Marseille / Aix-en-Provence", "Marseille", "Aix-en-Provence"},
		{"Circulaire", "", ""},
	}
	for _, c := range cases {
		origin, dest := SplitLongName(c.in)
		if origin != c.origin || dest != c.dest {
			t.Errorf("SplitLongName(%q) = %q, %q; want %q, %q", c.in, origin, dest, c.origin, c.dest)
		}
	}
}

func TestIsRegionalNetwork(t *testing.T) {
	cases := map[string]bool{
		"TER Bretagne":          true,
		"Réseau Zou":            true,
		"Cars Région Express":   true,
		"Interurbain de l'Oise": false,
		"RATP":                  false,
	}
	for label, want := range cases {
		if got := IsRegionalNetwork(label); got != want {
			t.Errorf("IsRegionalNetwork(%q) = %v, want %v", label, got, want)
		}
	}
}
