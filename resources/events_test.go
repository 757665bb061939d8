package resources

import (
	"strconv"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-spapi/schemas/notifications"
)

const orderChangeNotification = `{
	"NotificationVersion": "1.0",
	"NotificationType": "ORDER_CHANGE",
	"PayloadVersion": "1.0",
	"EventTime": "2024-03-01T10:15:00.123Z",
	"Payload": {
		"OrderChangeNotification": {
			"AmazonOrderId": "902-1111111-2222222",
			"SellerId": "A3SELLER"
		}
	},
	"NotificationMetadata": {
		"ApplicationId": "amzn1.sellerapps.app.test",
		"SubscriptionId": "sub-1",
		"PublishTime": "2024-03-01T10:15:01Z",
		"NotificationId": "note-1"
	}
}`

func TestParseNotificationDecodesDirectBody(t *testing.T) {
	notification, err := ParseNotification([]byte(orderChangeNotification))
	if err != nil {
		t.Fatalf("parse notification: %v", err)
	}
	if notification.NotificationType != "ORDER_CHANGE" {
		t.Fatalf("expected ORDER_CHANGE, got %q", notification.NotificationType)
	}
	expectedTime := time.Date(2024, 3, 1, 10, 15, 0, 123000000, time.UTC)
	if !notification.EventTime.Equal(expectedTime) {
		t.Fatalf("expected event time %s, got %s", expectedTime, notification.EventTime)
	}
	if notification.NotificationMetadata.NotificationID != "note-1" || notification.NotificationMetadata.ApplicationID != "amzn1.sellerapps.app.test" {
		t.Fatalf("unexpected metadata %#v", notification.NotificationMetadata)
	}
	if got := NotificationResourceID(notification); got != "902-1111111-2222222" {
		t.Fatalf("expected nested order id, got %q", got)
	}
	if got := PollInterval(notification); got != 2*time.Minute {
		t.Fatalf("expected order poll interval, got %s", got)
	}
}

func TestParseNotificationUnwrapsSNSEnvelope(t *testing.T) {
	body := `{"Type":"Notification","MessageId":"msg-1","Timestamp":"2024-03-01T10:15:02Z","Message":` +
		strconv.Quote(orderChangeNotification) + `}`

	notification, err := ParseNotification([]byte(body))
	if err != nil {
		t.Fatalf("parse notification: %v", err)
	}
	if notification.NotificationType != "ORDER_CHANGE" || notification.NotificationMetadata.SubscriptionID != "sub-1" {
		t.Fatalf("expected envelope message to be decoded, got %#v", notification)
	}
}

func TestParseNotificationUnwrapsEventBridgeDetail(t *testing.T) {
	body := `{"version":"0","detail-type":"ANY_OFFER_CHANGED","source":"aws.partner/sellingpartnerapi.amazon.com","detail":` +
		`{"notificationType":"ANY_OFFER_CHANGED","payload":{"asin":"B00TEST"}}}`

	notification, err := ParseNotification([]byte(body))
	if err != nil {
		t.Fatalf("parse notification: %v", err)
	}
	if notification.NotificationType != "ANY_OFFER_CHANGED" {
		t.Fatalf("expected detail notification type, got %q", notification.NotificationType)
	}
	if got := NotificationResourceID(notification); got != "B00TEST" {
		t.Fatalf("expected asin resource id, got %q", got)
	}
	if got := PollInterval(notification); got != 15*time.Minute {
		t.Fatalf("expected default poll interval, got %s", got)
	}
}

func TestParseNotificationErrors(t *testing.T) {
	_, err := ParseNotification([]byte("not json"))
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ErrorNotificationMalformed {
		t.Fatalf("expected malformed notification error, got %v", err)
	}

	_, err = ParseNotification([]byte(`{"NotificationVersion":"1.0"}`))
	if err == nil {
		t.Fatalf("expected missing notification type and payload to fail")
	}
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation envelope, got %v", err)
	}
}

func TestPollIntervalWithoutResourceID(t *testing.T) {
	notification := notifications.Notification{NotificationType: "LISTINGS_ITEM_STATUS_CHANGE", Payload: map[string]any{}}
	if got := PollInterval(notification); got != 2*time.Minute {
		t.Fatalf("expected short interval without a resource id, got %s", got)
	}
	notification.Payload = map[string]any{"SellerSku": "SKU-1"}
	if got := PollInterval(notification); got != 10*time.Minute {
		t.Fatalf("expected listing interval, got %s", got)
	}
}
