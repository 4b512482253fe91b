package models

import (
	"strings"
	"time"
)

// Role is the application-level permission attached to a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole normalizes a role value coming from the spreadsheet. Anything that
// is not recognizably an admin is treated as a plain user.
func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// MovementType tells whether a history record received or issued stock.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// ParseMovementType accepts IN/OUT in any case and reports whether the value was recognized.
func ParseMovementType(value string) (MovementType, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(MovementIn):
		return MovementIn, true
	case string(MovementOut):
		return MovementOut, true
	default:
		return MovementType(value), false
	}
}

// Item is a stocked article identified by its code.
type Item struct {
	Code     string  `json:"code" bson:"code"`
	Name     string  `json:"name" bson:"name"`
	Location string  `json:"location" bson:"location"`
	Price    float64 `json:"price" bson:"price"`
	Stock    float64 `json:"stock" bson:"stock"`
	Min      float64 `json:"min" bson:"min"`
	LotSize  string  `json:"lotSize" bson:"lot_size"`
	Barcode  string  `json:"barcode" bson:"barcode"`
	Img      string  `json:"img" bson:"img"`
}

// LowStock reports whether the item reached its reorder threshold.
func (i Item) LowStock() bool {
	return i.Min > 0 && i.Stock <= i.Min
}

// User is a staff member allowed to log movements.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	PIN  string `json:"pin,omitempty"`
}

// Public returns a copy safe to hand out over the API.
func (u User) Public() User {
	u.PIN = ""
	return u
}

// HistoryRecord is one stock movement row as stored by the backend.
type HistoryRecord struct {
	RowNumber int          `json:"rowNumber"`
	Timestamp string       `json:"timestamp"`
	UserID    string       `json:"userId"`
	Code      string       `json:"code"`
	Qty       float64      `json:"qty"`
	Unit      string       `json:"unit"`
	Type      MovementType `json:"type"`
}

// MonthlySeriesPoint is one precomputed month of the in/out chart.
type MonthlySeriesPoint struct {
	Month string  `json:"month"`
	In    float64 `json:"in"`
	Out   float64 `json:"out"`
}

// Snapshot is the full client-side copy of the backend data. It is replaced
// wholesale on every reload and never mutated in place.
type Snapshot struct {
	Items         []Item               `json:"items"`
	Users         []User               `json:"users"`
	History       []HistoryRecord      `json:"history"`
	MonthlySeries []MonthlySeriesPoint `json:"monthlySeries"`
	LoadedAt      time.Time            `json:"loadedAt"`
}

// Loaded reports whether the snapshot was populated by at least one reload.
func (s Snapshot) Loaded() bool {
	return !s.LoadedAt.IsZero()
}

// MovementRequest asks the backend to record a stock movement.
type MovementRequest struct {
	UserID string       `json:"userId"`
	Code   string       `json:"code"`
	Qty    float64      `json:"qty"`
	Unit   string       `json:"unit"`
	Type   MovementType `json:"type"`
}
