package alerts

import (
	"errors"
	"strings"
	"time"

	"github.com/good-yellow-bee/alerthub/internal/models"
)

func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}

func ValidateSeverity(s string) (models.Severity, error) {
	severity := models.Severity(s)
	if !severity.Valid() {
		return "", errors.New("severity must be 'info', 'warning', or 'critical'")
	}
	return severity, nil
}

func ValidateDeliveryType(t string) (models.DeliveryType, error) {
	deliveryType := models.DeliveryType(t)
	if !deliveryType.Valid() {
		return "", errors.New("delivery_type must be 'in_app', 'email', or 'sms'")
	}
	return deliveryType, nil
}

func ValidateVisibility(v string) (models.Visibility, error) {
	visibility := models.Visibility(v)
	if !visibility.Valid() {
		return "", errors.New("visibility must be 'organization', 'team', or 'user'")
	}
	return visibility, nil
}

func ValidateWindow(start, expiry time.Time) error {
	if start.IsZero() {
		return errors.New("start_time is required")
	}
	if expiry.IsZero() {
		return errors.New("expiry_time is required")
	}
	if !expiry.After(start) {
		return errors.New("expiry_time must be after start_time")
	}
	return nil
}
