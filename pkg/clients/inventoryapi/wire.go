package inventoryapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
)

// flexNumber accepts JSON numbers and numeric strings. Spreadsheet cells that
// hold text or nothing decode to zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*n = flexNumber(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
	default:
		*n = 0
	}
	return nil
}

// flexString accepts JSON strings and numbers, e.g. numeric item codes.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		*s = flexString(strings.TrimSpace(v))
	case float64:
		*s = flexString(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(v))
	default:
		*s = ""
	}
	return nil
}

type wireItem struct {
	Code     flexString `json:"code"`
	Name     flexString `json:"name"`
	Location flexString `json:"location"`
	Price    flexNumber `json:"price"`
	Stock    flexNumber `json:"stock"`
	Min      flexNumber `json:"min"`
	LotSize  flexString `json:"lotSize"`
	Barcode  flexString `json:"barcode"`
	Img      flexString `json:"img"`
}

func (w wireItem) model() models.Item {
	return models.Item{
		Code:     string(w.Code),
		Name:     string(w.Name),
		Location: string(w.Location),
		Price:    float64(w.Price),
		Stock:    float64(w.Stock),
		Min:      float64(w.Min),
		LotSize:  string(w.LotSize),
		Barcode:  string(w.Barcode),
		Img:      string(w.Img),
	}
}

type wireUser struct {
	ID   flexString `json:"id"`
	Name flexString `json:"name"`
	Role flexString `json:"role"`
	PIN  flexString `json:"pin"`
}

func (w wireUser) model() models.User {
	return models.User{
		ID:   string(w.ID),
		Name: string(w.Name),
		Role: models.ParseRole(string(w.Role)),
		PIN:  string(w.PIN),
	}
}

type wireHistory struct {
	RowNumber flexNumber `json:"rowNumber"`
	Timestamp flexString `json:"timestamp"`
	UserID    flexString `json:"userId"`
	Code      flexString `json:"code"`
	Qty       flexNumber `json:"qty"`
	Unit      flexString `json:"unit"`
	Type      flexString `json:"type"`
}

func (w wireHistory) model() models.HistoryRecord {
	mt, ok := models.ParseMovementType(string(w.Type))
	if !ok {
		mt = models.MovementType(strings.ToUpper(string(w.Type)))
	}
	return models.HistoryRecord{
		RowNumber: int(w.RowNumber),
		Timestamp: string(w.Timestamp),
		UserID:    string(w.UserID),
		Code:      string(w.Code),
		Qty:       float64(w.Qty),
		Unit:      string(w.Unit),
		Type:      mt,
	}
}

type wireSeriesPoint struct {
	Month flexString `json:"month"`
	In    flexNumber `json:"in"`
	Out   flexNumber `json:"out"`
}

func (w wireSeriesPoint) model() models.MonthlySeriesPoint {
	return models.MonthlySeriesPoint{Month: string(w.Month), In: float64(w.In), Out: float64(w.Out)}
}

type writeResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// extractList normalizes the shapes the backend uses for collections: a bare
// array, an object holding the array under key, or under "data". Any other
// valid JSON shape is an empty collection. Bodies that are not JSON at all
// and explicit {"ok":false} replies are errors.
func extractList(action string, body []byte, key string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, ErrUnexpectedBody
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, nil
	}

	if err := rejection(action, obj); err != nil {
		return nil, err
	}

	for _, k := range []string{key, "data"} {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var nested []json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			return nested, nil
		}
	}

	return nil, nil
}

// extractObject finds a single record in a bare object or under key/"data".
func extractObject(action string, body []byte, key string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, ErrUnexpectedBody
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, nil
	}

	if err := rejection(action, obj); err != nil {
		return nil, err
	}

	for _, k := range []string{key, "data"} {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		if nested := bytes.TrimSpace(raw); len(nested) > 0 && nested[0] == '{' {
			return nested, nil
		}
	}

	if _, ok := obj["code"]; ok {
		return trimmed, nil
	}

	return nil, nil
}

func rejection(action string, obj map[string]json.RawMessage) error {
	raw, ok := obj["ok"]
	if !ok {
		return nil
	}

	var okValue bool
	if err := json.Unmarshal(raw, &okValue); err != nil || okValue {
		return nil
	}

	var message string
	if rawErr, ok := obj["error"]; ok {
		_ = json.Unmarshal(rawErr, &message)
	}
	if message == "" {
		message = "unknown error"
	}
	return &models.BackendError{Action: action, Message: message}
}

// decodeEach decodes every element into T, dropping elements of the wrong shape.
func decodeEach[T any](list []json.RawMessage) (out []T, skipped int) {
	out = make([]T, 0, len(list))
	for _, raw := range list {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped
}
