// Package transit holds the pure presentation transforms applied to upstream
// data before it leaves the API: route ordering, network dedup, delay and
// departure computation. Everything here is side-effect free.
package transit

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/yourorg/transitfr/internal/models"
)

// modeRank orders transit modes the way riders expect them listed: heavy
// rail first, then surface modes, then the exotic ones.
var modeRank = map[string]int{
	"SUBWAY":    0,
	"RAIL":      1,
	"TRAM":      2,
	"BUS":       3,
	"COACH":     4,
	"FERRY":     5,
	"CABLE_CAR": 6,
	"GONDOLA":   7,
	"FUNICULAR": 8,
}

// regionalKeywords flag route or operator names that belong to a regional
// (as opposed to urban) network brand.
var regionalKeywords = []string{
	"ter", "zou", "remi", "fluo", "breizhgo", "aleop", "nomad",
	"mobigo", "lio", "cars region", "cars région",
}

// compareShortNames orders route short names numerically when both parse as
// integers ("2" before "10") and lexicographically otherwise.
func compareShortNames(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortRoutes orders routes by GTFS type, then by short name with numeric
// comparison. Stable, in place.
func SortRoutes(routes []models.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Type != routes[j].Type {
			return routes[i].Type < routes[j].Type
		}
		return compareShortNames(routes[i].ShortName, routes[j].ShortName) < 0
	})
}

// SortRoutesByMode orders routes by mode precedence, then by short name.
// Unknown modes sort last.
func SortRoutesByMode(routes []models.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		ri, iok := modeRank[routes[i].Mode]
		rj, jok := modeRank[routes[j].Mode]
		if !iok {
			ri = len(modeRank)
		}
		if !jok {
			rj = len(modeRank)
		}
		if ri != rj {
			return ri < rj
		}
		return compareShortNames(routes[i].ShortName, routes[j].ShortName) < 0
	})
}

// displayName is the label a network is grouped under: the curated display
// name when set, the feed id otherwise.
func displayName(n models.Network) string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.FeedID
}

// DedupNetworks collapses available networks that share a display name into
// one entry per name, merging their operator lists. The same brand often
// appears in several regions (SNCF feeds in particular); the first
// occurrence wins for the network fields. Unavailable networks are dropped.
func DedupNetworks(networks []models.Network) []models.Network {
	var out []models.Network
	index := make(map[string]int)

	for _, n := range networks {
		if !n.IsAvailable {
			continue
		}
		name := displayName(n)
		pos, seen := index[name]
		if !seen {
			out = append(out, n)
			index[name] = len(out) - 1
			continue
		}
		merged := out[pos]
		for _, op := range n.Operators {
			dup := false
			for _, existing := range merged.Operators {
				if existing.GtfsID == op.GtfsID {
					dup = true
					break
				}
			}
			if !dup {
				merged.Operators = append(merged.Operators, op)
			}
		}
		out[pos] = merged
	}
	return out
}

// GroupByDisplayName buckets networks under their display label, keeping
// unavailable ones. Used by admin views that want the full picture.
func GroupByDisplayName(networks []models.Network) map[string][]models.Network {
	groups := make(map[string][]models.Network)
	for _, n := range networks {
		name := displayName(n)
		groups[name] = append(groups[name], n)
	}
	return groups
}

// SplitRegional partitions networks into regional brands and urban ones,
// judged by the network label and its operator names.
func SplitRegional(networks []models.Network) (regional, urban []models.Network) {
	for _, n := range networks {
		isRegional := IsRegionalNetwork(displayName(n))
		if !isRegional {
			for _, op := range n.Operators {
				if IsRegionalNetwork(op.Name) {
					isRegional = true
					break
				}
			}
		}
		if isRegional {
			regional = append(regional, n)
		} else {
			urban = append(urban, n)
		}
	}
	return regional, urban
}

// Delay returns the departure delay in whole minutes, or nil when the
// stoptime carries no realtime data. Scheduled times have no delay by
// definition, not a delay of zero. Computed from the two departure times
// rather than the upstream delay field, which is not always consistent with
// them.
func Delay(st models.Stoptime) *int {
	if !st.Realtime {
		return nil
	}
	minutes := (st.RealtimeDeparture - st.ScheduledDeparture) / 60
	return &minutes
}

// Departure is one upcoming departure resolved to an absolute time.
type Departure struct {
	Time     time.Time     `json:"time"`
	Realtime bool          `json:"realtime"`
	Delay    *int          `json:"delay_minutes,omitempty"`
	Headsign string        `json:"headsign,omitempty"`
	Route    *models.Route `json:"route,omitempty"`
}

// departureTime resolves a stoptime to wall-clock time: seconds past the
// service day, realtime when available.
func departureTime(st models.Stoptime) time.Time {
	seconds := st.ScheduledDeparture
	if st.Realtime {
		seconds = st.RealtimeDeparture
	}
	return time.Unix(st.ServiceDay+int64(seconds), 0)
}

// NextDepartures resolves stoptimes to absolute departures, drops the ones
// already gone, sorts by time and keeps at most n.
func NextDepartures(stoptimes []models.Stoptime, now time.Time, n int) []Departure {
	departures := make([]Departure, 0, len(stoptimes))
	for _, st := range stoptimes {
		at := departureTime(st)
		if !at.After(now) {
			continue
		}
		d := Departure{
			Time:     at,
			Realtime: st.Realtime,
			Delay:    Delay(st),
			Headsign: st.Headsign,
		}
		if st.Trip != nil {
			d.Route = st.Trip.Route
		}
		departures = append(departures, d)
	}
	sort.Slice(departures, func(i, j int) bool {
		return departures[i].Time.Before(departures[j].Time)
	})
	if n > 0 && len(departures) > n {
		departures = departures[:n]
	}
	return departures
}

// RouteDepartures groups one route's upcoming departures.
type RouteDepartures struct {
	Route      *models.Route `json:"route"`
	Departures []Departure   `json:"departures"`
}

// GroupDeparturesByRoute buckets departures per route, preserving time order
// inside each bucket and ordering buckets by their earliest departure.
// Departures without route information are grouped under a nil route, last.
func GroupDeparturesByRoute(departures []Departure) []RouteDepartures {
	var out []RouteDepartures
	index := make(map[string]int)

	for _, d := range departures {
		key := ""
		if d.Route != nil {
			key = d.Route.GtfsID
		}
		pos, seen := index[key]
		if !seen {
			out = append(out, RouteDepartures{Route: d.Route})
			pos = len(out) - 1
			index[key] = pos
		}
		out[pos].Departures = append(out[pos].Departures, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Route == nil {
			return false
		}
		if out[j].Route == nil {
			return true
		}
		return out[i].Departures[0].Time.Before(out[j].Departures[0].Time)
	})
	return out
}

// SplitLongName derives origin and destination from a route long name of the
// form "Origin - Destination". Names without a separator yield empty pairs.
func SplitLongName(longName string) (origin, destination string) {
	for _, sep := range []string{" - ", " – ", " <-> ", " / "} {
		if i := strings.Index(longName, sep); i >= 0 {
			return strings.TrimSpace(longName[:i]), strings.TrimSpace(longName[i+len(sep):])
		}
	}
	return "", ""
}

// IsRegionalNetwork reports whether a network or operator label belongs to a
// regional brand rather than an urban one. Single-word keywords match on
// whole words only, "ter" must not fire on "Interurbain".
func IsRegionalNetwork(label string) bool {
	lowered := strings.ToLower(label)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, kw := range regionalKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lowered, kw) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == kw {
				return true
			}
		}
	}
	return false
}
