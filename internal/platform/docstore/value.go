package docstore

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// The typed-value form below is the Firestore REST representation. The
// PostgreSQL and memory backends store the same form so that a field keeps its
// type whichever backend wrote it.

func encodeFields(fields Fields) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = ev
	}
	return out, nil
}

func encodeValue(v any) (map[string]any, error) {
	switch x := v.(type) {
	case nil:
		return map[string]any{"nullValue": nil}, nil
	case string:
		return map[string]any{"stringValue": x}, nil
	case bool:
		return map[string]any{"booleanValue": x}, nil
	case int:
		return map[string]any{"integerValue": strconv.FormatInt(int64(x), 10)}, nil
	case int32:
		return map[string]any{"integerValue": strconv.FormatInt(int64(x), 10)}, nil
	case int64:
		return map[string]any{"integerValue": strconv.FormatInt(x, 10)}, nil
	case float32:
		return map[string]any{"doubleValue": encodeDouble(float64(x))}, nil
	case float64:
		return map[string]any{"doubleValue": encodeDouble(x)}, nil
	case time.Time:
		return map[string]any{"timestampValue": x.UTC().Format(time.RFC3339Nano)}, nil
	case []byte:
		return map[string]any{"bytesValue": base64.StdEncoding.EncodeToString(x)}, nil
	case Fields:
		return encodeMap(x)
	case map[string]any:
		return encodeMap(x)
	case []string:
		values := make([]any, len(x))
		for i, s := range x {
			values[i] = s
		}
		return encodeArray(values)
	case []any:
		return encodeArray(x)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func encodeMap(m map[string]any) (map[string]any, error) {
	inner, err := encodeFields(m)
	if err != nil {
		return nil, err
	}
	return map[string]any{"mapValue": map[string]any{"fields": inner}}, nil
}

func encodeArray(values []any) (map[string]any, error) {
	if len(values) == 0 {
		return map[string]any{"arrayValue": map[string]any{}}, nil
	}
	out := make([]any, len(values))
	for i, v := range values {
		ev, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = ev
	}
	return map[string]any{"arrayValue": map[string]any{"values": out}}, nil
}

// encodeDouble keeps non-finite numbers representable in JSON.
func encodeDouble(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return f
	}
}

func decodeFields(raw map[string]any) (Fields, error) {
	out := make(Fields, len(raw))
	for k, v := range raw {
		dv, err := decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = dv
	}
	return out, nil
}

func decodeValue(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("malformed value %v", raw)
	}

	// Single-key map: the key is the value type.
	keys := make([]string, 0, 1)
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kind, v := keys[0], m[keys[0]]

	switch kind {
	case "nullValue":
		return nil, nil
	case "stringValue", "referenceValue":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected string, got %T", kind, v)
		}
		return s, nil
	case "booleanValue":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("booleanValue: expected bool, got %T", v)
		}
		return b, nil
	case "integerValue":
		switch n := v.(type) {
		case string:
			return strconv.ParseInt(n, 10, 64)
		case float64:
			return int64(n), nil
		}
		return nil, fmt.Errorf("integerValue: unexpected %T", v)
	case "doubleValue":
		return decodeDouble(v)
	case "timestampValue":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("timestampValue: expected string, got %T", v)
		}
		return time.Parse(time.RFC3339Nano, s)
	case "bytesValue":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("bytesValue: expected string, got %T", v)
		}
		return base64.StdEncoding.DecodeString(s)
	case "geoPointValue":
		p, _ := v.(map[string]any)
		return map[string]any{"latitude": p["latitude"], "longitude": p["longitude"]}, nil
	case "mapValue":
		mv, _ := v.(map[string]any)
		inner, _ := mv["fields"].(map[string]any)
		fields, err := decodeFields(inner)
		if err != nil {
			return nil, err
		}
		return map[string]any(fields), nil
	case "arrayValue":
		av, _ := v.(map[string]any)
		items, _ := av["values"].([]any)
		out := make([]any, len(items))
		for i, item := range items {
			dv, err := decodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = dv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value type %q", kind)
	}
}

func decodeDouble(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		switch n {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("doubleValue: unexpected %T", v)
}

// normalize runs fields through the wire form and back, so in-process
// backends hand out the same types as remote ones and never alias caller maps.
func normalize(fields Fields) (Fields, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	return decodeFields(encoded)
}
