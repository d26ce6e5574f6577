package database

import (
	"time"
)

// FloatRecord is the latest observation snapshot for one ARGO float.
type FloatRecord struct {
	ID          int64
	FloatID     string
	Latitude    float64
	Longitude   float64
	Depth       float64
	Temperature *float64
	Salinity    *float64
	Pressure    *float64
	Oxygen      *float64
	PH          *float64
	Chlorophyll *float64
	Timestamp   time.Time
	Status      string
	DataQuality string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChatSession groups the messages of one conversation
type ChatSession struct {
	SessionID  string
	UserID     *string
	Title      *string
	QueryCount int
	LastQuery  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChatMessage is one user or assistant turn in a session
type ChatMessage struct {
	ID          int64
	SessionID   string
	MessageType string // 'user' or 'assistant'
	Content     string
	DataPoints  *int
	Confidence  *float64
	CreatedAt   time.Time
}

// RegionalSummary holds daily per-basin parameter averages
type RegionalSummary struct {
	ID             int64
	Region         string
	Day            time.Time
	AvgTemperature *float64
	AvgSalinity    *float64
	AvgOxygen      *float64
	SampleCount    int
	CreatedAt      time.Time
}

const (
	FloatStatusActive   = "active"
	FloatStatusInactive = "inactive"

	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
)
