package models

import "time"

// MonthlyReport is the archived month summary produced by the scheduler.
type MonthlyReport struct {
	Month       string           `bson:"month" json:"month"`
	Movement    []MovementBucket `bson:"movement" json:"movement"`
	Pie         PieSplit         `bson:"pie" json:"pie"`
	Last30Days  int              `bson:"last_30_days" json:"last30Days"`
	LowStock    []Item           `bson:"low_stock" json:"lowStock"`
	StockValue  string           `bson:"stock_value" json:"stockValue"`
	GeneratedAt time.Time        `bson:"generated_at" json:"generatedAt"`
}
