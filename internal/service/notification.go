package service

import "cryptodesk/internal/domain"

// Notifier delivers alert events to the user-facing notification channel.
// Delivery and formatting are entirely the implementation's responsibility;
// the core only hands over the alert.
type Notifier interface {
	Send(alert *domain.Alert) error
}
