package staging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// payload is one raw record body. Connectors deliver at least three
// incompatible layouts per source (a legacy REST shape, a newer graph-query
// shape and a synthetic demo shape), so every logical field is read through an
// ordered list of candidate paths and the first present value wins. Adding a
// fourth shape means adding paths, not branching.
type payload map[string]any

// lookup walks a dot-separated path ("totalPriceSet.shopMoney.amount") through
// nested objects.
func (p payload) lookup(path string) (any, bool) {
	var current any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (p payload) first(paths ...string) (any, bool) {
	for _, path := range paths {
		if value, ok := p.lookup(path); ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func (p payload) stringField(paths ...string) string {
	value, ok := p.first(paths...)
	if !ok {
		return ""
	}
	return stringValue(value)
}

func (p payload) decimalField(paths ...string) decimal.Decimal {
	value, ok := p.first(paths...)
	if !ok {
		return decimal.Zero
	}
	return decimalValue(value)
}

func (p payload) intField(paths ...string) int64 {
	value, ok := p.first(paths...)
	if !ok {
		return 0
	}
	return intValue(value)
}

func (p payload) boolField(paths ...string) (bool, bool) {
	value, ok := p.first(paths...)
	if !ok {
		return false, false
	}
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		lowered := strings.ToLower(strings.TrimSpace(v))
		return lowered == "true" || lowered == "1" || lowered == "yes", true
	default:
		return false, false
	}
}

func (p payload) mapField(paths ...string) payload {
	value, ok := p.first(paths...)
	if !ok {
		return nil
	}
	if node, ok := value.(map[string]any); ok {
		return payload(node)
	}
	return nil
}

func (p payload) sliceField(paths ...string) []any {
	value, ok := p.first(paths...)
	if !ok {
		return nil
	}
	if items, ok := value.([]any); ok {
		return items
	}
	return nil
}

// timeField parses the first present candidate as a timestamp. A present but
// unparsable value is an error so the caller can skip the record.
func (p payload) timeField(paths ...string) (time.Time, error) {
	value, ok := p.first(paths...)
	if !ok {
		return time.Time{}, fmt.Errorf("no date field present (tried %s)", strings.Join(paths, ", "))
	}
	return timeValue(value)
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func decimalValue(value any) decimal.Decimal {
	switch v := value.(type) {
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return parsed
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero
		}
		return parsed
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	default:
		return decimal.Zero
	}
}

func intValue(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func timeValue(value any) (time.Time, error) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparsable date %q", v)
	case float64:
		// Payment providers deliver unix seconds.
		return time.Unix(int64(v), 0).UTC(), nil
	case json.Number:
		seconds, err := v.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unparsable date %q", v.String())
		}
		return time.Unix(seconds, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unparsable date value of type %T", value)
	}
}

// dayOf truncates a timestamp to its UTC calendar day, the grain of the
// date-keyed staging tables.
func dayOf(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// landingParams extracts the query parameters of a landing-page URL. Bare
// paths without a scheme ("/collections/sale?utm_source=x") are accepted.
func landingParams(rawURL string) url.Values {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return url.Values{}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return url.Values{}
	}
	return parsed.Query()
}
