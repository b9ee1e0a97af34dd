//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"math"
	"reflect"
)

// wholeNumber converts a JSON number without a fractional part, such as 20 or 20.0, to an int.
func wholeNumber(n json.Number, field string) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, &json.UnmarshalTypeError{Value: "number " + n.String(), Type: reflect.TypeOf(0), Field: field}
	}
	return int(f), nil
}

// UnmarshalJSON accepts a topK written as a whole float, matching the JSON Schema integer type.
func (r *RankRequest) UnmarshalJSON(data []byte) error {
	type plain RankRequest
	aux := struct {
		*plain
		TopK *json.Number `json:"topK"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TopK != nil {
		topK, err := wholeNumber(*aux.TopK, "topK")
		if err != nil {
			return err
		}
		r.TopK = topK
	}
	return nil
}

// UnmarshalJSON accepts a topK written as a whole float, matching the JSON Schema integer type.
func (o *AnalyzeOptions) UnmarshalJSON(data []byte) error {
	type plain AnalyzeOptions
	aux := struct {
		*plain
		TopK *json.Number `json:"topK,omitempty"`
	}{plain: (*plain)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.TopK != nil {
		topK, err := wholeNumber(*aux.TopK, "topK")
		if err != nil {
			return err
		}
		o.TopK = &topK
	}
	return nil
}
