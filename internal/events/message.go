// Package events carries domain events over AMQP.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// RoutingKeyBillReminder is the routing key of bill reminder events.
const RoutingKeyBillReminder = "bill.reminder"

// BillReminder asks the worker to tell a user about an upcoming bill.
type BillReminder struct {
	Type      string    `json:"type"`
	BillID    string    `json:"bill_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	DueDate   time.Time `json:"due_date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillReminder returns a reminder event stamped with the current time.
func NewBillReminder(billID, userID, email, name string, amount int64, currency string, due time.Time) *BillReminder {
	return &BillReminder{
		Type:      RoutingKeyBillReminder,
		BillID:    billID,
		UserID:    userID,
		Email:     email,
		Name:      name,
		Amount:    amount,
		Currency:  currency,
		DueDate:   due,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON encodes the event.
func (m *BillReminder) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillReminderFromJSON decodes and checks an event.
func BillReminderFromJSON(data []byte) (*BillReminder, error) {
	var m BillReminder
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Type != RoutingKeyBillReminder {
		return nil, fmt.Errorf("unexpected event type %q", m.Type)
	}
	if m.BillID == "" || m.Email == "" {
		return nil, fmt.Errorf("bill reminder missing bill id or email")
	}
	return &m, nil
}
