package models

import "time"

type Reminder struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	BookTitle string    `json:"bookTitle"`
	UserEmail string    `json:"userEmail"`
	RemindAt  time.Time `json:"remindAt"`
	Delivered bool      `json:"delivered"`
}

func (r Reminder) DeliveryLabel() string {
	if r.Delivered {
		return "Sent"
	}
	return "Scheduled"
}
