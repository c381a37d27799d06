// ============================================================================
// OTP GraphQL Client
// ============================================================================
// One client per region endpoint. Every operation issues a fixed GraphQL
// document and degrades uniformly: transport errors, GraphQL errors[] and
// missing data all collapse into the operation's typed empty result. Callers
// never see an error from this layer.
// ============================================================================

package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/transitfr/internal/cache"
	"github.com/yourorg/transitfr/internal/models"
)

const requestTimeout = 30 * time.Second

// Client talks to one region's OTP GraphQL endpoint.
type Client struct {
	region     string
	baseURL    string
	httpClient *http.Client
	caches     *cache.Registry
}

// NewClient builds a client for the given region. The cache registry may be
// nil to disable caching (reconciliation passes want fresh data). Region API
// URLs point at the /graphiql UI; the POST endpoint lives under the OTP
// router index.
func NewClient(region models.Region, caches *cache.Registry) *Client {
	baseURL := strings.TrimSpace(region.APIURL)
	if strings.HasSuffix(baseURL, "/graphiql") {
		baseURL = strings.TrimSuffix(baseURL, "/graphiql") + "/otp/routers/default/index/graphql"
	}
	return &Client{
		region:  region.ID,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		caches: caches,
	}
}

// gqlError is one entry of a GraphQL errors[] payload.
type gqlError struct {
	Message string `json:"message"`
}

// envelope is the raw GraphQL response shape: either data or errors.
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// execute posts one GraphQL document and returns the data payload. The three
// failure classes (transport, errors[], missing data) are distinguished here
// for logging only; callers of the public operations receive empty results
// in all three cases.
func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("otp[%s] %s: encode request: %w", c.region, operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("otp[%s] %s: build request: %w", c.region, operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("otp[%s] %s: transport: %w", c.region, operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("otp[%s] %s: status %d", c.region, operation, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("otp[%s] %s: read response: %w", c.region, operation, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("otp[%s] %s: decode response: %w", c.region, operation, err)
	}
	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("otp[%s] %s: graphql errors: %s", c.region, operation, strings.Join(messages, ", "))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("otp[%s] %s: missing data", c.region, operation)
	}
	return env.Data, nil
}

// query runs execute and decodes the data payload into out. Errors are
// logged and reported as a bool so every public operation reads the same:
// check cache, run query, fall back to the typed empty value.
func (c *Client) query(ctx context.Context, operation, doc string, variables map[string]interface{}, out interface{}) bool {
	data, err := c.execute(ctx, operation, doc, variables)
	if err != nil {
		log.Printf("%v", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("otp[%s] %s: decode data: %v", c.region, operation, err)
		return false
	}
	return true
}

const feedsQuery = `
query {
  feeds {
    feedId
    agencies {
      id
      gtfsId
      name
      url
      timezone
      lang
      phone
      fareUrl
    }
  }
}`

// GetFeeds lists the feeds exposed by the region. Empty on any failure.
func (c *Client) GetFeeds(ctx context.Context) []models.Feed {
	cacheKey := "feeds:" + c.region
	if c.caches != nil {
		if v, found := c.caches.Networks.Get(cacheKey); found {
			if feeds, ok := v.([]models.Feed); ok {
				return feeds
			}
		}
	}

	var result struct {
		Feeds []models.Feed `json:"feeds"`
	}
	if !c.query(ctx, "getFeeds", feedsQuery, nil, &result) {
		return []models.Feed{}
	}
	if result.Feeds == nil {
		result.Feeds = []models.Feed{}
	}
	if c.caches != nil {
		c.caches.Networks.Set(cacheKey, result.Feeds)
	}
	return result.Feeds
}

// GetAgenciesByFeed returns the agencies of one feed. The upstream schema
// has no per-feed agency query, so the feeds response is filtered
// client-side. Empty when the feed is unknown or on any failure.
func (c *Client) GetAgenciesByFeed(ctx context.Context, feedID string) []models.Agency {
	for _, feed := range c.GetFeeds(ctx) {
		if feed.FeedID == feedID {
			if feed.Agencies == nil {
				return []models.Agency{}
			}
			return feed.Agencies
		}
	}
	return []models.Agency{}
}

const routesByAgencyQuery = `
query RoutesByAgency($agencyId: String!) {
  agency(id: $agencyId) {
    routes {
      gtfsId
      shortName
      longName
      mode
      type
      color
      textColor
      patterns {
        code
        name
        stops {
          gtfsId
          name
          code
          lat
          lon
        }
      }
    }
  }
}`

// GetRoutesByAgency lists the routes operated by one agency.
func (c *Client) GetRoutesByAgency(ctx context.Context, agencyID string) []models.Route {
	cacheKey := "routes:" + c.region + ":" + agencyID
	if c.caches != nil {
		if v, found := c.caches.Lines.Get(cacheKey); found {
			if routes, ok := v.([]models.Route); ok {
				return routes
			}
		}
	}

	var result struct {
		Agency *struct {
			Routes []models.Route `json:"routes"`
		} `json:"agency"`
	}
	if !c.query(ctx, "getRoutesByAgency", routesByAgencyQuery, map[string]interface{}{"agencyId": agencyID}, &result) {
		return []models.Route{}
	}
	if result.Agency == nil || result.Agency.Routes == nil {
		return []models.Route{}
	}
	if c.caches != nil {
		c.caches.Lines.Set(cacheKey, result.Agency.Routes)
	}
	return result.Agency.Routes
}

const routeDetailsQuery = `
query RouteDetails($routeId: String!) {
  route(id: $routeId) {
    gtfsId
    shortName
    longName
    mode
    type
    color
    textColor
    desc
    patterns {
      code
      name
      headsign
      directionId
      stops {
        gtfsId
        name
        code
        desc
        lat
        lon
        zoneId
        platformCode
      }
    }
  }
}`

// GetRouteDetails returns one route with its patterns, or nil.
func (c *Client) GetRouteDetails(ctx context.Context, routeID string) *models.Route {
	cacheKey := "route:" + c.region + ":" + routeID
	if c.caches != nil {
		if v, found := c.caches.Lines.Get(cacheKey); found {
			if route, ok := v.(*models.Route); ok {
				return route
			}
		}
	}

	var result struct {
		Route *models.Route `json:"route"`
	}
	if !c.query(ctx, "getRouteDetails", routeDetailsQuery, map[string]interface{}{"routeId": routeID}, &result) {
		return nil
	}
	if result.Route != nil && c.caches != nil {
		c.caches.Lines.Set(cacheKey, result.Route)
	}
	return result.Route
}

const patternsByRouteQuery = `
query PatternsByRoute($routeId: String!) {
  route(id: $routeId) {
    patterns {
      code
      name
      headsign
      directionId
      patternGeometry {
        points
        length
      }
      stops {
        gtfsId
        name
        code
        lat
        lon
      }
      trips {
        gtfsId
        tripHeadsign
        serviceId
      }
    }
  }
}`

// GetPatternsByRoute lists the stop-sequence variants of one route.
func (c *Client) GetPatternsByRoute(ctx context.Context, routeID string) []models.Pattern {
	cacheKey := "patterns:" + c.region + ":" + routeID
	if c.caches != nil {
		if v, found := c.caches.Lines.Get(cacheKey); found {
			if patterns, ok := v.([]models.Pattern); ok {
				return patterns
			}
		}
	}

	var result struct {
		Route *struct {
			Patterns []models.Pattern `json:"patterns"`
		} `json:"route"`
	}
	if !c.query(ctx, "getPatternsByRoute", patternsByRouteQuery, map[string]interface{}{"routeId": routeID}, &result) {
		return []models.Pattern{}
	}
	if result.Route == nil || result.Route.Patterns == nil {
		return []models.Pattern{}
	}
	if c.caches != nil {
		c.caches.Lines.Set(cacheKey, result.Route.Patterns)
	}
	return result.Route.Patterns
}

const stopsByPatternQuery = `
query StopsByPattern($patternId: String!) {
  pattern(id: $patternId) {
    stops {
      gtfsId
      name
      code
      desc
      lat
      lon
      zoneId
      platformCode
      wheelchairBoarding
    }
  }
}`

// GetStopsByPattern lists the stops served by one pattern.
func (c *Client) GetStopsByPattern(ctx context.Context, patternID string) []models.Stop {
	cacheKey := "patternstops:" + c.region + ":" + patternID
	if c.caches != nil {
		if v, found := c.caches.Stops.Get(cacheKey); found {
			if stops, ok := v.([]models.Stop); ok {
				return stops
			}
		}
	}

	var result struct {
		Pattern *struct {
			Stops []models.Stop `json:"stops"`
		} `json:"pattern"`
	}
	if !c.query(ctx, "getStopsByPattern", stopsByPatternQuery, map[string]interface{}{"patternId": patternID}, &result) {
		return []models.Stop{}
	}
	if result.Pattern == nil || result.Pattern.Stops == nil {
		return []models.Stop{}
	}
	if c.caches != nil {
		c.caches.Stops.Set(cacheKey, result.Pattern.Stops)
	}
	return result.Pattern.Stops
}

const stopDetailsQuery = `
query StopDetails($stopId: String!, $numberOfDepartures: Int!) {
  stop(id: $stopId) {
    gtfsId
    name
    code
    desc
    lat
    lon
    zoneId
    platformCode
    wheelchairBoarding
    routes {
      gtfsId
      shortName
      longName
      mode
      type
      color
    }
    stoptimesWithoutPatterns(numberOfDepartures: $numberOfDepartures) {
      scheduledArrival
      realtimeArrival
      arrivalDelay
      scheduledDeparture
      realtimeDeparture
      departureDelay
      realtime
      realtimeState
      serviceDay
      headsign
      trip {
        gtfsId
        route {
          gtfsId
          shortName
          longName
          mode
          color
        }
      }
    }
  }
}`

// GetStopDetails returns one stop with its routes and next departures, or
// nil. Responses carrying realtime departures age out in seconds; purely
// scheduled ones keep the longer timetable TTL.
func (c *Client) GetStopDetails(ctx context.Context, stopID string, numberOfDepartures int) *models.Stop {
	if numberOfDepartures <= 0 {
		numberOfDepartures = 10
	}
	cacheKey := fmt.Sprintf("stop:%s:%s:%d", c.region, stopID, numberOfDepartures)
	if c.caches != nil {
		if v, found := c.caches.Realtime.Get(cacheKey); found {
			if stop, ok := v.(*models.Stop); ok {
				return stop
			}
		}
		if v, found := c.caches.Timetables.Get(cacheKey); found {
			if stop, ok := v.(*models.Stop); ok {
				return stop
			}
		}
	}

	var result struct {
		Stop *models.Stop `json:"stop"`
	}
	variables := map[string]interface{}{
		"stopId":             stopID,
		"numberOfDepartures": numberOfDepartures,
	}
	if !c.query(ctx, "getStopDetails", stopDetailsQuery, variables, &result) {
		return nil
	}
	if result.Stop != nil && c.caches != nil {
		if hasRealtime(result.Stop.Stoptimes) {
			c.caches.Realtime.Set(cacheKey, result.Stop)
		} else {
			c.caches.Timetables.Set(cacheKey, result.Stop)
		}
	}
	return result.Stop
}

func hasRealtime(stoptimes []models.Stoptime) bool {
	for _, st := range stoptimes {
		if st.Realtime {
			return true
		}
	}
	return false
}

const stopsByRadiusQuery = `
query StopsByRadius($lat: Float!, $lon: Float!, $radius: Int!) {
  stopsByRadius(lat: $lat, lon: $lon, radius: $radius) {
    edges {
      node {
        stop {
          gtfsId
          name
          code
          lat
          lon
          wheelchairBoarding
          routes {
            gtfsId
            shortName
            longName
            mode
          }
        }
        distance
      }
    }
  }
}`

const planTripQuery = `
query PlanTrip($from: InputCoordinates!, $to: InputCoordinates!, $date: String!, $time: String!) {
  plan(from: $from, to: $to, date: $date, time: $time, numItineraries: 3, walkReluctance: 2.0) {
    itineraries {
      duration
      walkDistance
      walkTime
      waitingTime
      legs {
        mode
        startTime {
          scheduledTime
          estimated {
            time
            delay
          }
        }
        endTime {
          scheduledTime
          estimated {
            time
            delay
          }
        }
        duration
        realTime
        distance
        transitLeg
        from {
          name
          lat
          lon
          stop {
            gtfsId
            name
            code
          }
        }
        to {
          name
          lat
          lon
          stop {
            gtfsId
            name
            code
          }
        }
        route {
          gtfsId
          shortName
          longName
          mode
          color
        }
        trip {
          gtfsId
          tripHeadsign
        }
        legGeometry {
          points
        }
      }
    }
  }
}`

// PlanTrip requests up to three itineraries between two points departing at
// the given time. Plans depend on the exact departure instant, so they are
// never cached. Empty on any failure.
func (c *Client) PlanTrip(ctx context.Context, from, to models.Coordinate, when time.Time) []models.Itinerary {
	var result struct {
		Plan *struct {
			Itineraries []models.Itinerary `json:"itineraries"`
		} `json:"plan"`
	}
	variables := map[string]interface{}{
		"from": from,
		"to":   to,
		"date": when.Format("2006-01-02"),
		"time": when.Format("15:04:05"),
	}
	if !c.query(ctx, "planTrip", planTripQuery, variables, &result) {
		return []models.Itinerary{}
	}
	if result.Plan == nil || result.Plan.Itineraries == nil {
		return []models.Itinerary{}
	}
	return result.Plan.Itineraries
}

// GetStopsByRadius lists the stops around a point. Position-dependent, so
// never cached.
func (c *Client) GetStopsByRadius(ctx context.Context, lat, lon float64, radius int) []models.Stop {
	var result struct {
		StopsByRadius *struct {
			Edges []struct {
				Node struct {
					Stop     models.Stop `json:"stop"`
					Distance float64     `json:"distance"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"stopsByRadius"`
	}
	variables := map[string]interface{}{
		"lat":    lat,
		"lon":    lon,
		"radius": radius,
	}
	if !c.query(ctx, "getStopsByRadius", stopsByRadiusQuery, variables, &result) {
		return []models.Stop{}
	}
	if result.StopsByRadius == nil {
		return []models.Stop{}
	}
	stops := make([]models.Stop, 0, len(result.StopsByRadius.Edges))
	for _, edge := range result.StopsByRadius.Edges {
		stop := edge.Node.Stop
		stop.DistanceMeters = edge.Node.Distance
		stops = append(stops, stop)
	}
	return stops
}
