package models

import "time"

// MovementBucket aggregates the IN and OUT quantities of one item over a period.
type MovementBucket struct {
	Code string  `json:"code" bson:"code"`
	Name string  `json:"name" bson:"name"`
	In   float64 `json:"in" bson:"in"`
	Out  float64 `json:"out" bson:"out"`
}

// Total is the combined movement used to rank buckets.
func (b MovementBucket) Total() float64 {
	return b.In + b.Out
}

// PieSplit is the two-way IN/OUT split for a period.
type PieSplit struct {
	In  float64 `json:"in" bson:"in"`
	Out float64 `json:"out" bson:"out"`
}

// DashboardSummary is the payload behind the main dashboard view.
type DashboardSummary struct {
	Month         string               `json:"month"`
	ItemCount     int                  `json:"itemCount"`
	UserCount     int                  `json:"userCount"`
	LowStock      []Item               `json:"lowStock"`
	StockValue    string               `json:"stockValue"`
	Last30Days    int                  `json:"last30Days"`
	Movement      []MovementBucket     `json:"movement"`
	Pie           PieSplit             `json:"pie"`
	MonthlySeries []MonthlySeriesPoint `json:"monthlySeries"`
	LoadedAt      time.Time            `json:"loadedAt"`
}

// ItemDetail couples an item with its own movement history.
type ItemDetail struct {
	Item    Item            `json:"item"`
	History []HistoryRecord `json:"history"`
}
