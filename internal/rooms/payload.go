package rooms

// Action payloads arrive as loosely typed JSON objects. These helpers pull
// out the field shapes the engines accept; a failed lookup becomes a
// structured failure result at the call site, never a runtime type error.

func intField(payload map[string]any, key string) (int, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		// JSON numbers decode to float64; only accept whole values here.
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

func floatField(payload map[string]any, key string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringField(payload map[string]any, key string) (string, bool) {
	if payload == nil {
		return "", false
	}
	s, ok := payload[key].(string)
	return s, ok
}

func boolField(payload map[string]any, key string) (bool, bool) {
	if payload == nil {
		return false, false
	}
	b, ok := payload[key].(bool)
	return b, ok
}
