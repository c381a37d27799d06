package models

// Types mirroring the OTP GraphQL schema. These are read-only projections
// fetched live per request and never persisted locally. JSON tags match the
// GraphQL field names.

// Feed is one GTFS data source exposed by the upstream API.
type Feed struct {
	FeedID   string   `json:"feedId"`
	Agencies []Agency `json:"agencies,omitempty"`
}

// Agency is a transit operator as reported by the upstream API.
type Agency struct {
	ID       string `json:"id"`
	GtfsID   string `json:"gtfsId"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Lang     string `json:"lang,omitempty"`
	Phone    string `json:"phone,omitempty"`
	FareURL  string `json:"fareUrl,omitempty"`
}

// Route is a transit line.
type Route struct {
	GtfsID    string    `json:"gtfsId"`
	ShortName string    `json:"shortName"`
	LongName  string    `json:"longName"`
	Mode      string    `json:"mode"`
	Type      int       `json:"type"`
	Desc      string    `json:"desc,omitempty"`
	Color     string    `json:"color,omitempty"`
	TextColor string    `json:"textColor,omitempty"`
	Patterns  []Pattern `json:"patterns,omitempty"`

	// Derived from LongName ("Origin - Destination"), not part of the
	// upstream schema.
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// PatternGeometry is an encoded polyline for one pattern.
type PatternGeometry struct {
	Points string `json:"points"`
	Length int    `json:"length"`
}

// TripRef is a trip summary attached to a pattern.
type TripRef struct {
	GtfsID       string `json:"gtfsId"`
	TripHeadsign string `json:"tripHeadsign,omitempty"`
	ServiceID    string `json:"serviceId,omitempty"`
}

// Pattern is one stop sequence variant of a route.
type Pattern struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Headsign    string           `json:"headsign,omitempty"`
	DirectionID int              `json:"directionId"`
	Geometry    *PatternGeometry `json:"patternGeometry,omitempty"`
	Stops       []Stop           `json:"stops,omitempty"`
	Trips       []TripRef        `json:"trips,omitempty"`
}

// Stop is a transit stop, optionally carrying next-departure projections.
type Stop struct {
	GtfsID             string     `json:"gtfsId"`
	Name               string     `json:"name"`
	Code               string     `json:"code,omitempty"`
	Desc               string     `json:"desc,omitempty"`
	Lat                float64    `json:"lat"`
	Lon                float64    `json:"lon"`
	ZoneID             string     `json:"zoneId,omitempty"`
	PlatformCode       string     `json:"platformCode,omitempty"`
	WheelchairBoarding string     `json:"wheelchairBoarding,omitempty"`
	Routes             []Route    `json:"routes,omitempty"`
	Stoptimes          []Stoptime `json:"stoptimesWithoutPatterns,omitempty"`

	// Distance from the query point, only set by radius searches.
	DistanceMeters float64 `json:"distance,omitempty"`
}

// Stoptime is one scheduled (and possibly realtime) departure at a stop.
// Arrival/departure fields are seconds since ServiceDay.
type Stoptime struct {
	ScheduledArrival   int           `json:"scheduledArrival"`
	RealtimeArrival    int           `json:"realtimeArrival"`
	ArrivalDelay       int           `json:"arrivalDelay"`
	ScheduledDeparture int           `json:"scheduledDeparture"`
	RealtimeDeparture  int           `json:"realtimeDeparture"`
	DepartureDelay     int           `json:"departureDelay"`
	Realtime           bool          `json:"realtime"`
	RealtimeState      string        `json:"realtimeState,omitempty"`
	ServiceDay         int64         `json:"serviceDay"`
	Headsign           string        `json:"headsign,omitempty"`
	Trip               *StoptimeTrip `json:"trip,omitempty"`
}

// StoptimeTrip links a departure back to its trip and route.
type StoptimeTrip struct {
	GtfsID string `json:"gtfsId"`
	Route  *Route `json:"route,omitempty"`
}

// Coordinate is a lat/lon pair, used as plan query input.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EstimatedTime is the realtime estimate attached to a leg bound.
type EstimatedTime struct {
	Time  string `json:"time"`
	Delay string `json:"delay,omitempty"`
}

// LegTime is one time bound of a leg: always scheduled, estimated when the
// leg runs on live data.
type LegTime struct {
	ScheduledTime string         `json:"scheduledTime"`
	Estimated     *EstimatedTime `json:"estimated,omitempty"`
}

// PlanPlace is one endpoint of a leg. Stop is set for transit endpoints.
type PlanPlace struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Stop *Stop   `json:"stop,omitempty"`
}

// Leg is one segment of a planned itinerary.
type Leg struct {
	Mode        string           `json:"mode"`
	StartTime   LegTime          `json:"startTime"`
	EndTime     LegTime          `json:"endTime"`
	Duration    float64          `json:"duration"`
	RealTime    bool             `json:"realTime"`
	Distance    float64          `json:"distance"`
	TransitLeg  bool             `json:"transitLeg"`
	From        PlanPlace        `json:"from"`
	To          PlanPlace        `json:"to"`
	Route       *Route           `json:"route,omitempty"`
	Trip        *TripRef         `json:"trip,omitempty"`
	LegGeometry *PatternGeometry `json:"legGeometry,omitempty"`
}

// Itinerary is one proposed journey between two points.
type Itinerary struct {
	Duration     float64 `json:"duration"`
	WalkDistance float64 `json:"walkDistance"`
	WalkTime     float64 `json:"walkTime"`
	WaitingTime  float64 `json:"waitingTime"`
	Legs         []Leg   `json:"legs"`
}
