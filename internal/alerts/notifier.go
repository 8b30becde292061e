package alerts

import (
	"context"
	"log"

	"github.com/01moynul/pricetracker-golang/internal/models"
)

// LogNotifier stands in for the email sender: it only logs the message.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, a models.TriggerableAlert) error {
	log.Printf("[alerts] To: %s | %s dropped to €%.2f (your target: €%.2f)",
		a.Email, a.ProductName, a.CurrentMinPrice, a.TargetPrice)
	return nil
}
