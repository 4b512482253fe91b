package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ScanKind tells which directory a scanned payload points into.
type ScanKind string

const (
	ScanItem ScanKind = "ITEM"
	ScanUser ScanKind = "USER"
)

const payloadSeparator = "|"

// ScanPayload is the decoded content of a QR label.
type ScanPayload struct {
	Kind ScanKind `json:"kind"`
	Code string   `json:"code"`
}

// EncodeItem returns the QR text printed on item labels.
func EncodeItem(code string) string {
	return string(ScanItem) + payloadSeparator + code
}

// EncodeUser returns the QR text printed on user badges.
func EncodeUser(id string) string {
	return string(ScanUser) + payloadSeparator + id
}

// DecodePayload extracts a code from a scanned label. It understands the
// "ITEM|<code>" / "USER|<id>" form and JSON objects carrying a code or id.
// Unrecognized input yields false and never an error.
func DecodePayload(raw string) (ScanPayload, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ScanPayload{}, false
	}

	if strings.HasPrefix(text, "{") {
		return decodeJSONPayload(text)
	}

	head, rest, found := strings.Cut(text, payloadSeparator)
	if !found {
		return ScanPayload{}, false
	}

	code := strings.TrimSpace(rest)
	if code == "" {
		return ScanPayload{}, false
	}

	switch ScanKind(strings.ToUpper(strings.TrimSpace(head))) {
	case ScanItem:
		return ScanPayload{Kind: ScanItem, Code: code}, true
	case ScanUser:
		return ScanPayload{Kind: ScanUser, Code: code}, true
	default:
		return ScanPayload{}, false
	}
}

func decodeJSONPayload(text string) (ScanPayload, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return ScanPayload{}, false
	}

	kind, _ := fields["type"].(string)
	code := scalarString(fields["code"])
	id := scalarString(fields["id"])

	switch {
	case strings.EqualFold(kind, string(ScanUser)) && (id != "" || code != ""):
		if id == "" {
			id = code
		}
		return ScanPayload{Kind: ScanUser, Code: id}, true
	case strings.EqualFold(kind, string(ScanItem)) && (code != "" || id != ""):
		if code == "" {
			code = id
		}
		return ScanPayload{Kind: ScanItem, Code: code}, true
	case code != "":
		return ScanPayload{Kind: ScanItem, Code: code}, true
	case id != "":
		return ScanPayload{Kind: ScanUser, Code: id}, true
	default:
		return ScanPayload{}, false
	}
}

// scalarString renders JSON strings and numbers; anything else is blank.
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
