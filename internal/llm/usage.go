package llm

import (
	"encoding/json"
	"math"
	"strconv"
)

// Upstream field names for each counter, in lookup order.
var (
	promptFields = []string{
		"prompt_tokens", "promptTokens", "input_tokens", "inputTokens",
		"promptTokenCount", "prompt_token_count",
	}
	completionFields = []string{
		"completion_tokens", "completionTokens", "output_tokens", "outputTokens",
		"candidatesTokenCount", "candidates_token_count",
	}
	totalFields = []string{
		"total_tokens", "totalTokens", "totalTokenCount", "total_token_count",
	}
)

// NormalizeUsage builds a Usage from an upstream usage object regardless of
// its naming convention. Values that are missing, non-positive or not
// finite are left at zero. A missing total defaults to prompt+completion.
func NormalizeUsage(fields map[string]any) Usage {
	u := Usage{
		PromptTokens:     firstPositive(fields, promptFields),
		CompletionTokens: firstPositive(fields, completionFields),
		TotalTokens:      firstPositive(fields, totalFields),
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
	return u
}

// usageFromJSON normalizes a raw upstream usage object.
func usageFromJSON(raw []byte) Usage {
	if len(raw) == 0 {
		return Usage{}
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Usage{}
	}
	return NormalizeUsage(fields)
}

// usageOf flattens an SDK usage struct through its JSON form so that the
// upstream field names reach NormalizeUsage unchanged.
func usageOf(v any) Usage {
	raw, err := json.Marshal(v)
	if err != nil {
		return Usage{}
	}
	return usageFromJSON(raw)
}

func firstPositive(fields map[string]any, names []string) int {
	for _, name := range names {
		if n, ok := positiveInt(fields[name]); ok {
			return n
		}
	}
	return 0
}

func positiveInt(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return int(f), true
}
