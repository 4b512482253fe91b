package models

// StocktakeRow compares the recorded stock of an item with a physical count.
type StocktakeRow struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Book float64 `json:"book"`
	Real float64 `json:"real"`
	Diff float64 `json:"diff"`
}
