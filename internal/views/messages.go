// Package views holds per-page state for one browser session. Every view
// catches failures at its own boundary and turns them into messages.
package views

import (
	"errors"
	"fmt"

	"library-web/internal/api"
	"library-web/internal/models"

	"github.com/rs/zerolog"
)

const (
	MsgCatalogLoadFailed   = "Could not load the catalog"
	MsgDetailLoadFailed    = "Could not load the book description"
	MsgOrderFailed         = "Could not complete the operation"
	MsgBooksLoadFailed     = "Could not load the book list"
	MsgBookSaveFailed      = "Could not save changes"
	MsgStatusChangeFailed  = "Could not change the status"
	MsgBookUpdated         = "Book updated"
	MsgBookCreated         = "Book added to the catalog"
	MsgActiveRentalsFailed = "Could not load active rentals"
	MsgRemindersFailed     = "Could not get the reminder list"
	MsgMyOrdersFailed      = "Could not get your orders"
	MsgAuthFailed          = "Something went wrong, please try again"
	MsgUnknownBook         = "This book is not in the catalog"
)

func orderConfirmation(t models.OrderType, title string) string {
	if t == models.OrderPurchase {
		return fmt.Sprintf("“%s” added to your purchases", title)
	}
	return fmt.Sprintf("Rental of “%s” confirmed", title)
}

func statusChanged(title string) string {
	return fmt.Sprintf("Status of “%s” updated", title)
}

// failureMessage surfaces API rejections verbatim and hides everything else
// behind fallback after logging it.
func failureMessage(logger zerolog.Logger, err error, fallback string) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.UserMessage()
	}
	logger.Error().Err(err).Msg(fallback)
	return fallback
}
