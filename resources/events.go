package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/schema"
	"github.com/goliatone/go-spapi/schemas/notifications"
)

const ErrorNotificationMalformed = "SPAPI_NOTIFICATION_MALFORMED"

// ParseNotification decodes a notification as read from an SQS queue or an
// EventBridge rule. SQS bodies may arrive wrapped in an SNS envelope, whose
// Message carries the notification JSON.
func ParseNotification(body []byte) (notifications.Notification, error) {
	raw, err := decodeNotificationObject(body)
	if err != nil {
		return notifications.Notification{}, err
	}
	if message, ok := raw["Message"].(string); ok && strings.EqualFold(stringValue(raw["Type"]), "notification") {
		raw, err = decodeNotificationObject([]byte(message))
		if err != nil {
			return notifications.Notification{}, err
		}
	}
	if detail, ok := raw["detail"].(map[string]any); ok {
		raw = detail
	}
	return notifications.NotificationShape.Parse(raw)
}

// NotificationResourceID returns the identifier of the resource a
// notification is about, such as the order id, or "" when it carries none.
func NotificationResourceID(notification notifications.Notification) string {
	payload := schema.KeysToInternal(notification.Payload)
	for _, key := range []string{"amazon_order_id", "order_id", "asin", "seller_sku"} {
		if value := stringValue(payload[key]); value != "" {
			return value
		}
	}
	for _, value := range payload {
		nested, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if id := stringValue(nested["amazon_order_id"]); id != "" {
			return id
		}
	}
	return ""
}

// PollInterval suggests how soon the resource behind a notification should
// be fetched again. Notifications are signals only; the API stays the source
// of truth.
func PollInterval(notification notifications.Notification) time.Duration {
	if NotificationResourceID(notification) == "" {
		return 2 * time.Minute
	}
	kind := strings.ToLower(notification.NotificationType)
	switch {
	case strings.Contains(kind, "order"):
		return 2 * time.Minute
	case strings.Contains(kind, "inventory"):
		return 5 * time.Minute
	case strings.Contains(kind, "listing"), strings.Contains(kind, "catalog"):
		return 10 * time.Minute
	default:
		return 15 * time.Minute
	}
}

func decodeNotificationObject(body []byte) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewReader(bytes.TrimSpace(body)))
	decoder.UseNumber()
	raw := map[string]any{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "resources: notification body is not a JSON object").
			WithCode(400).
			WithTextCode(ErrorNotificationMalformed)
	}
	return raw, nil
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return ""
	}
}
