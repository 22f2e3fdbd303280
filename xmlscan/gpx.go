package xmlscan

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/relvacode/iso8601"
)

const earthRadiusMeters = 6371000.0

type TrackPoint struct {
	Lat       float64
	Lon       float64
	Elevation float64
	Time      time.Time
}

// GPXHandler collects track points in document order. Metadata holds the
// creator attribute and the track or metadata name and time.
type GPXHandler struct {
	textCollector
	Metadata map[string]string
	Points   []TrackPoint

	current *TrackPoint
}

func NewGPXHandler() *GPXHandler {
	return &GPXHandler{Metadata: make(map[string]string)}
}

func (h *GPXHandler) StartElement(name string, attrs map[string]string) error {
	h.reset()
	switch name {
	case "gpx":
		if c, ok := attrs["creator"]; ok {
			h.Metadata["creator"] = c
		}
	case "trkpt", "rtept", "wpt":
		lat, err := coordinate(attrs, "lat", 90)
		if err != nil {
			return err
		}
		lon, err := coordinate(attrs, "lon", 180)
		if err != nil {
			return err
		}
		h.current = &TrackPoint{Lat: lat, Lon: lon}
	}
	return nil
}

func (h *GPXHandler) EndElement(name string) error {
	defer h.reset()

	if h.current == nil {
		switch name {
		case "name", "time":
			if _, seen := h.Metadata[name]; !seen {
				h.Metadata[name] = h.value()
			}
		}
		return nil
	}

	switch name {
	case "ele":
		ele, err := strconv.ParseFloat(h.value(), 64)
		if err != nil {
			return fmt.Errorf("gpx: bad elevation %q", h.value())
		}
		h.current.Elevation = ele
	case "time":
		t, err := iso8601.Parse([]byte(h.value()))
		if err != nil {
			return fmt.Errorf("gpx: bad time %q: %w", h.value(), err)
		}
		h.current.Time = t
	case "trkpt", "rtept", "wpt":
		h.Points = append(h.Points, *h.current)
		h.current = nil
	}
	return nil
}

// TotalDistance sums great-circle distances between consecutive points, in metres.
func (h *GPXHandler) TotalDistance() float64 {
	var total float64
	for i := 1; i < len(h.Points); i++ {
		total += haversine(h.Points[i-1], h.Points[i])
	}
	return total
}

// Duration is the time between the first and last timestamped points.
func (h *GPXHandler) Duration() time.Duration {
	var first, last time.Time
	for _, p := range h.Points {
		if p.Time.IsZero() {
			continue
		}
		if first.IsZero() {
			first = p.Time
		}
		last = p.Time
	}
	return last.Sub(first)
}

func coordinate(attrs map[string]string, name string, limit float64) (float64, error) {
	raw, ok := attrs[name]
	if !ok {
		return 0, fmt.Errorf("gpx: point without %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > limit {
		return 0, fmt.Errorf("gpx: bad %s %q", name, raw)
	}
	return v, nil
}

func haversine(a, b TrackPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(s))
}
