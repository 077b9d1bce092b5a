package models

import "time"

type OrderType string

const (
	OrderPurchase        OrderType = "PURCHASE"
	OrderRentTwoWeeks    OrderType = "RENT_TWO_WEEKS"
	OrderRentOneMonth    OrderType = "RENT_ONE_MONTH"
	OrderRentThreeMonths OrderType = "RENT_THREE_MONTHS"
)

var RentalTypes = []OrderType{OrderRentTwoWeeks, OrderRentOneMonth, OrderRentThreeMonths}

func (t OrderType) Valid() bool {
	switch t {
	case OrderPurchase, OrderRentTwoWeeks, OrderRentOneMonth, OrderRentThreeMonths:
		return true
	}
	return false
}

func (t OrderType) IsRental() bool {
	return t.Valid() && t != OrderPurchase
}

func (t OrderType) Label() string {
	switch t {
	case OrderPurchase:
		return "Purchase"
	case OrderRentTwoWeeks:
		return "Rental (2 weeks)"
	case OrderRentOneMonth:
		return "Rental (1 month)"
	case OrderRentThreeMonths:
		return "Rental (3 months)"
	}
	return string(t)
}

// ShortLabel is used where the column already says "rental".
func (t OrderType) ShortLabel() string {
	switch t {
	case OrderRentTwoWeeks:
		return "2 weeks"
	case OrderRentOneMonth:
		return "1 month"
	case OrderRentThreeMonths:
		return "3 months"
	}
	return t.Label()
}

type OrderStatus string

const (
	OrderActive    OrderStatus = "ACTIVE"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderOverdue   OrderStatus = "OVERDUE"
)

func (s OrderStatus) Label() string {
	switch s {
	case OrderActive:
		return "Active"
	case OrderCompleted:
		return "Completed"
	case OrderOverdue:
		return "Overdue"
	}
	return string(s)
}

type Order struct {
	ID        string      `json:"id"`
	BookID    string      `json:"bookId"`
	BookTitle string      `json:"bookTitle"`
	Type      OrderType   `json:"type"`
	Status    OrderStatus `json:"status"`
	Price     float64     `json:"price"`
	StartDate time.Time   `json:"startDate"`
	EndDate   *time.Time  `json:"endDate"`
}

type CreateOrderRequest struct {
	BookID string    `json:"bookId"`
	Type   OrderType `json:"type"`
}
