package graph

// Value normalisation for driver-native types. Cypher integers arrive as int64
// and floats as float64; older tooling occasionally hands back plain ints.
// Downstream code deals in plain Go numbers only, so every read crosses one of
// these helpers.

func String(v any) string {
	s, _ := v.(string)
	return s
}

func Int(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// StringSlice converts a Cypher list of strings.
func StringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// MapSlice converts a Cypher list of maps (collected sub-records).
func MapSlice(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
