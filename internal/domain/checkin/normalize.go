package checkin

import (
	"time"
)

// TimestampShape identifies which historical encoding a raw event used for
// its timestamp. The collection accumulated several layouts over time; the
// decoder tries them in a fixed order instead of scattering shape-sniffing
// through the business logic.
type TimestampShape int

const (
	ShapeUnknown TimestampShape = iota
	ShapeNative                 // store-native timestamp, surfaced as time.Time
	ShapeEpoch                  // numeric epoch in milliseconds
	ShapeISO                    // ISO-8601 style string
	ShapeSecondsField           // {seconds: n} map, alternate serialized form
)

func (s TimestampShape) String() string {
	switch s {
	case ShapeNative:
		return "native"
	case ShapeEpoch:
		return "epoch"
	case ShapeISO:
		return "iso"
	case ShapeSecondsField:
		return "seconds-field"
	default:
		return "unknown"
	}
}

func decodeNative(v interface{}) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

func decodeEpoch(v interface{}) (time.Time, bool) {
	var ms int64
	switch n := v.(type) {
	case int64:
		ms = n
	case int:
		ms = int64(n)
	case float64:
		ms = int64(n)
	default:
		return time.Time{}, false
	}
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func decodeISO(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func decodeSecondsField(v interface{}) (time.Time, bool) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return time.Time{}, false
	}
	secs, ok := m["seconds"]
	if !ok {
		return time.Time{}, false
	}
	var s int64
	switch n := secs.(type) {
	case int64:
		s = n
	case int:
		s = int64(n)
	case float64:
		s = int64(n)
	default:
		return time.Time{}, false
	}
	if s <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(s * 1000), true
}

var timestampDecoders = []struct {
	shape  TimestampShape
	decode func(interface{}) (time.Time, bool)
}{
	{ShapeNative, decodeNative},
	{ShapeEpoch, decodeEpoch},
	{ShapeISO, decodeISO},
	{ShapeSecondsField, decodeSecondsField},
}

// DecodeTimestamp attempts every known timestamp shape in priority order.
// ok is false when no shape applies; the event is then unusable for any
// dated report and should be dropped.
func DecodeTimestamp(v interface{}) (time.Time, TimestampShape, bool) {
	if v == nil {
		return time.Time{}, ShapeUnknown, false
	}
	for _, d := range timestampDecoders {
		if t, ok := d.decode(v); ok {
			return t, d.shape, true
		}
	}
	return time.Time{}, ShapeUnknown, false
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func decodeLocation(data map[string]interface{}) Location {
	// Preferred shape: a nested location map.
	if raw, ok := data["location"].(map[string]interface{}); ok {
		loc := Location{}
		if lat, ok := asFloat(raw["latitude"]); ok {
			loc.Latitude = lat
		}
		if lon, ok := asFloat(raw["longitude"]); ok {
			loc.Longitude = lon
		}
		if acc, ok := asFloat(raw["accuracy"]); ok {
			loc.Accuracy = acc
		}
		return loc
	}

	// Legacy shape: coordinates flattened to the top level.
	lat, latOK := asFloat(data["latitude"])
	lon, lonOK := asFloat(data["longitude"])
	if latOK && lonOK {
		loc := Location{Latitude: lat, Longitude: lon}
		if acc, ok := asFloat(data["accuracy"]); ok {
			loc.Accuracy = acc
		}
		return loc
	}

	return Location{}
}

// Normalize reconciles a raw stored event into a canonical Record. The
// second return is false when the event carries no decodable timestamp,
// which is a data-quality gate, not an error: such events are silently
// excluded from report output.
func Normalize(raw RawEvent) (Record, bool) {
	ts, _, ok := DecodeTimestamp(raw.Data["timestamp"])
	if !ok {
		return Record{}, false
	}

	username := asString(raw.Data["username"])
	if username == "" {
		username = UnidentifiedUser
	}

	deviceInfo := asString(raw.Data["deviceInfo"])
	if deviceInfo == "" {
		deviceInfo = asString(raw.Data["device"])
	}
	if deviceInfo == "" {
		deviceInfo = UnknownDevice
	}

	return Record{
		ID:         raw.ID,
		UserID:     asString(raw.Data["userId"]),
		Username:   username,
		Timestamp:  ts,
		Location:   decodeLocation(raw.Data),
		PhotoURL:   ValidPhotoURL(asString(raw.Data["photoUrl"])),
		Address:    AddressPending,
		DeviceInfo: deviceInfo,
	}, true
}
