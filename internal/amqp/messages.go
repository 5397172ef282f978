package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"foyer/internal/core"
)

// ReportExportMessage asks the worker to recompute a month and write it to
// the report sheet. Version grows with every request for the same month so
// stale messages can be skipped.
type ReportExportMessage struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Version     int64     `json:"version"`
	RequestedAt time.Time `json:"requested_at"`
}

func NewReportExportMessage(p core.Period, version int64) *ReportExportMessage {
	return &ReportExportMessage{
		Year:        p.Year,
		Month:       p.Month,
		Version:     version,
		RequestedAt: time.Now(),
	}
}

func (m *ReportExportMessage) Period() core.Period {
	return core.Period{Year: m.Year, Month: m.Month}
}

// ToJSON converts the message to JSON bytes
func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportExportMessageFromJSON decodes and validates a message body.
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Period().Validate(); err != nil {
		return nil, fmt.Errorf("message for %04d-%02d: %w", msg.Year, msg.Month, err)
	}
	return &msg, nil
}
