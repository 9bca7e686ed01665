package checkin

import (
	"strings"
	"time"
)

// Sentinels used wherever a raw event is missing optional data. They match
// what the mobile clients already show, so the admin console stays in
// Portuguese end to end.
const (
	UnidentifiedUser = "Usuário não identificado"
	UnknownDevice    = "Dispositivo não informado"
	AddressPending   = "Carregando endereço..."
)

// Location is the GPS fix attached to a check-in. It is always populated:
// events without coordinates get the zero value so downstream rendering
// never dereferences a missing structure.
type Location struct {
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
	Accuracy  float64 `firestore:"accuracy" json:"accuracy"`
}

func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

// RawEvent is an unprocessed check-in document as retrieved from the store.
// Several historical field layouts coexist in the collection, so the data
// stays an opaque bag until the normalizer has had a look at it.
type RawEvent struct {
	ID   string
	Data map[string]interface{}
}

// Record is the canonical, reconciled check-in. ID is always the store
// document key, never regenerated. Address starts as AddressPending and is
// overwritten once reverse geocoding resolves.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Timestamp  time.Time `json:"timestamp"`
	Location   Location  `json:"location"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	Address    string    `json:"address"`
	DeviceInfo string    `json:"deviceInfo"`
}

// Stats summarizes the collection for the dashboard overview cards.
type Stats struct {
	TodayCount int     `json:"todayCount"`
	TotalCount int     `json:"totalCount"`
	Latest     *Record `json:"latestCheckIn,omitempty"`
}

// ValidPhotoURL keeps a photo URL only when it is an absolute http(s) URL;
// relative storage paths from old client builds are dropped.
func ValidPhotoURL(u string) string {
	if strings.HasPrefix(u, "http") {
		return u
	}
	return ""
}
