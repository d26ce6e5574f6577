package protocol

import (
	"encoding/json"
	"time"
)

// ObservationMessage is the internal Kafka payload for one ARGO float
// observation, produced by the ingestion service and consumed by the
// database writer. Messages are keyed by float id.
type ObservationMessage struct {
	FloatID     string    `json:"float_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Depth       float64   `json:"depth"`
	Temperature *float64  `json:"temperature,omitempty"`
	Salinity    *float64  `json:"salinity,omitempty"`
	Pressure    *float64  `json:"pressure,omitempty"`
	Oxygen      *float64  `json:"oxygen,omitempty"`
	PH          *float64  `json:"ph,omitempty"`
	Chlorophyll *float64  `json:"chlorophyll,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	ReceivedAt  time.Time `json:"received_at"`
}

const SourceERDDAP = "erddap"

// EncodeObservationMessage encodes an ObservationMessage to JSON
func EncodeObservationMessage(msg *ObservationMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeObservationMessage decodes JSON to ObservationMessage
func DecodeObservationMessage(data []byte) (*ObservationMessage, error) {
	var msg ObservationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
