package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

const RoutingKeyMonthClosed = "ledger.month_closed"

// MonthClosedMessage is published once per stored closure.
type MonthClosedMessage struct {
	UserID   uuid.UUID       `json:"user_id"`
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Total    decimal.Decimal `json:"total"`
	ClosedAt time.Time       `json:"closed_at"`
}

func NewMonthClosedMessage(c *ledger.Closure) *MonthClosedMessage {
	return &MonthClosedMessage{
		UserID:   c.UserID,
		Year:     c.Year,
		Month:    int(c.Month),
		Total:    c.Total,
		ClosedAt: c.CreatedAt.UTC(),
	}
}

func (m *MonthClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MonthClosedMessageFromJSON(data []byte) (*MonthClosedMessage, error) {
	var msg MonthClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}
