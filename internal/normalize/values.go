package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// lookup возвращает значение поля по его алиасам: побеждает первое
// непустое, но само присутствие любого алиаса тоже фиксируется, чтобы
// patch мог явно выставить пустое значение.
func lookup(raw map[string]interface{}, field string) (interface{}, bool) {
	var (
		found    bool
		fallback interface{}
	)
	for _, alias := range fieldAliases[field] {
		value, ok := raw[alias]
		if !ok {
			continue
		}
		if !found {
			found = true
			fallback = value
		}
		if !isEmptyValue(value) {
			return value, true
		}
	}
	return fallback, found
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

func asBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

func asFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func asInt64(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
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

// timeLayouts — форматы дат, встречающиеся в выгрузках маркетплейсов.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func asTime(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		t := *v
		return &t
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

func stringField(raw map[string]interface{}, field string) (string, bool) {
	value, ok := lookup(raw, field)
	if !ok {
		return "", false
	}
	return asString(value), true
}

func boolField(raw map[string]interface{}, field string) (bool, bool) {
	value, ok := lookup(raw, field)
	if !ok {
		return false, false
	}
	return asBool(value), true
}

func floatField(raw map[string]interface{}, field string) (float64, bool) {
	value, ok := lookup(raw, field)
	if !ok {
		return 0, false
	}
	return asFloat(value), true
}

func int64Field(raw map[string]interface{}, field string) (int64, bool) {
	value, ok := lookup(raw, field)
	if !ok {
		return 0, false
	}
	return asInt64(value), true
}

func timeField(raw map[string]interface{}, field string) (*time.Time, bool) {
	value, ok := lookup(raw, field)
	if !ok {
		return nil, false
	}
	return asTime(value), true
}
