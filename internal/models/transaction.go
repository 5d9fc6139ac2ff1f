package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Disposition classifies the outcome of a booked engagement.
type Disposition string

const (
	DispositionBooked    Disposition = "booked"
	DispositionConfirmed Disposition = "confirmed"
	DispositionCancelled Disposition = "cancelled"
	DispositionNoShow    Disposition = "no_show"
)

// Lost reports whether the engagement never happened. Lost records are
// excluded from service aggregates but feed the cancellation rate.
func (d Disposition) Lost() bool {
	return d == DispositionCancelled || d == DispositionNoShow
}

// LabelList is the canonical list-of-strings form of the legacy add-on and
// discount columns, which arrive in inconsistent shapes: a JSON array, a bare
// scalar, or a JSON array serialized into a text column. The variants are
// resolved once here, at ingestion; anything unparseable normalizes to an
// empty list rather than failing the row.
type LabelList []string

// UnmarshalJSON accepts an array, a quoted scalar, or a quoted JSON array.
func (l *LabelList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = cleanLabels(arr)
		return nil
	}

	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		*l = ParseLabels(scalar)
		return nil
	}

	*l = nil
	return nil
}

// Scan implements sql.Scanner for text/jsonb columns.
func (l *LabelList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		*l = ParseLabels(string(v))
		return nil
	case string:
		*l = ParseLabels(v)
		return nil
	default:
		return fmt.Errorf("unsupported label list type %T", src)
	}
}

// Value implements driver.Valuer, always writing the canonical JSON array.
func (l LabelList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// ParseLabels normalizes a raw stored value into a label list.
func ParseLabels(raw string) LabelList {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			return cleanLabels(arr)
		}
		// A list-looking value that does not parse is treated as empty.
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var scalar string
		if err := json.Unmarshal([]byte(trimmed), &scalar); err == nil {
			return cleanLabels([]string{scalar})
		}
		return nil
	}

	return cleanLabels([]string{trimmed})
}

func cleanLabels(arr []string) LabelList {
	out := make(LabelList, 0, len(arr))
	for _, label := range arr {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TransactionRecord is one booked engagement, successful or lost.
type TransactionRecord struct {
	ID              string      `db:"id" json:"id"`
	CastID          string      `db:"cast_id" json:"cast_id"`
	CustomerID      *string     `db:"customer_id" json:"customer_id,omitempty"`
	Timestamp       time.Time   `db:"datetime" json:"datetime"`
	Price           float64     `db:"price" json:"price"`
	CastPayout      float64     `db:"cast_payout" json:"cast_payout"`
	Disposition     Disposition `db:"disposition" json:"disposition"`
	Package         string      `db:"package" json:"package"`
	PriorityBooking string      `db:"priority_booking" json:"priority_booking"`
	StartTime       *string     `db:"start_time" json:"start_time,omitempty"`
	EndTime         *string     `db:"end_time" json:"end_time,omitempty"`
	AddOns          LabelList   `db:"add_ons" json:"add_ons"`
	AddOnPrice      float64     `db:"add_on_price" json:"add_on_price"`
	Discounts       LabelList   `db:"discounts" json:"discounts"`
	DiscountAmount  float64     `db:"discount_amount" json:"discount_amount"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// DateKey returns the calendar-date key of the engagement.
func (t TransactionRecord) DateKey() string {
	return t.Timestamp.Format("2006-01-02")
}
