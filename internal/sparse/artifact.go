package sparse

import (
	"encoding/json"
	"fmt"
)

// artifactVersion is bumped when the serialized form changes shape.
const artifactVersion = 1

type encoderJSON struct {
	Version     int            `json:"version"`
	K1          float64        `json:"k1"`
	B           float64        `json:"b"`
	DocCount    int            `json:"doc_count"`
	TotalDocLen int            `json:"total_doc_len"`
	DocFreq     map[string]int `json:"doc_freq"`
}

// MarshalJSON serializes the encoder in the versioned artifact format.
func (e *Encoder) MarshalJSON() ([]byte, error) {
	return json.Marshal(encoderJSON{
		Version:     artifactVersion,
		K1:          e.k1,
		B:           e.b,
		DocCount:    e.docCount,
		TotalDocLen: e.totalDocLen,
		DocFreq:     e.docFreq,
	})
}

// UnmarshalJSON restores an encoder from its artifact form.
func (e *Encoder) UnmarshalJSON(data []byte) error {
	var a encoderJSON
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if a.K1 <= 0 {
		a.K1 = DefaultK1
	}
	if a.B <= 0 {
		a.B = DefaultB
	}
	if a.DocFreq == nil {
		a.DocFreq = make(map[string]int)
	}
	e.k1 = a.K1
	e.b = a.B
	e.docCount = a.DocCount
	e.totalDocLen = a.TotalDocLen
	e.docFreq = a.DocFreq
	return nil
}
