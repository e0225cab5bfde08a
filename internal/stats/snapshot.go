package stats

import "encoding/json"

// Snapshot is the serializable image of one interval sketch shipped in a
// progress report (spec.md §4.2, GLOSSARY). It carries the sketch's
// self-describing {type, params} header plus exactly one kind-specific
// payload. The wire JSON flattens type/params and the payload into a
// single object, matching spec.md §8's example bodies.
type Snapshot struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`

	Histogram   *HistogramSnapshot   `json:"-"`
	Accumulator *AccumulatorSnapshot `json:"-"`
	Counter     *CounterSnapshot     `json:"-"`
	Uniques     *UniquesSnapshot     `json:"-"`
	Peak        *PeakSnapshot        `json:"-"`
	Rate        *RateSnapshot        `json:"-"`
}

// HistogramSnapshot is Histogram's wire payload.
type HistogramSnapshot struct {
	Items  []int64 `json:"items"`
	Extra  []int64 `json:"extra"`
	Sum    int64   `json:"sum"`
	Min    int64   `json:"min"`
	Max    int64   `json:"max"`
	Length int64   `json:"length"`
}

// AccumulatorSnapshot is Accumulator's wire payload.
type AccumulatorSnapshot struct {
	Total  float64 `json:"total"`
	Length int64   `json:"length"`
}

// CounterSnapshot is ResultsCounter's wire payload.
type CounterSnapshot struct {
	Items        map[string]int64 `json:"items"`
	StartUnixMs  int64             `json:"startUnixMs"`
}

// UniquesSnapshot is Uniques' wire payload.
type UniquesSnapshot struct {
	Items map[string]int64 `json:"items"`
	Uniqs int64             `json:"uniqs"`
}

// PeakSnapshot is Peak's wire payload.
type PeakSnapshot struct {
	Max float64 `json:"max"`
}

// RateSnapshot is Rate's wire payload.
type RateSnapshot struct {
	Count       int64 `json:"count"`
	StartUnixMs int64 `json:"startUnixMs"`
}

// MarshalJSON flattens the header and the kind-specific payload into one
// object, e.g. {"type":"Histogram","params":{...},"items":[...],"sum":7,...}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"type": s.Type}
	if len(s.Params) > 0 {
		out["params"] = s.Params
	}

	payload, err := payloadOf(s)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		var fields map[string]interface{}
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func payloadOf(s Snapshot) (interface{}, error) {
	switch s.Type {
	case KindHistogram:
		return s.Histogram, nil
	case KindAccumulator:
		return s.Accumulator, nil
	case KindCounter:
		return s.Counter, nil
	case KindUniques:
		return s.Uniques, nil
	case KindPeak:
		return s.Peak, nil
	case KindRate:
		return s.Rate, nil
	case "":
		return nil, nil
	default:
		return nil, &ErrUnknownKind{Kind: s.Type}
	}
}

// UnmarshalJSON reconstructs the right payload type from the "type" field
// before decoding the rest.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var header struct {
		Type   string                 `json:"type"`
		Params map[string]interface{} `json:"params"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	s.Type = header.Type
	s.Params = header.Params

	switch header.Type {
	case KindHistogram:
		var p HistogramSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Histogram = &p
	case KindAccumulator:
		var p AccumulatorSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Accumulator = &p
	case KindCounter:
		var p CounterSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Counter = &p
	case KindUniques:
		var p UniquesSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Uniques = &p
	case KindPeak:
		var p PeakSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Peak = &p
	case KindRate:
		var p RateSnapshot
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		s.Rate = &p
	default:
		return &ErrUnknownKind{Kind: header.Type}
	}
	return nil
}
