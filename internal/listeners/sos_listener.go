// Package listeners connects model signals to their side effects, keeping
// notification fan-out out of the sync path.
package listeners

import (
	"context"
	"fmt"
	"time"

	"safecircle/internal/models"
	"safecircle/pkg/logger"
	"safecircle/pkg/notification"
	"safecircle/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const smsTimeout = 10 * time.Second

// InitSOSListeners wires the alert fan-out: once a record is confirmed on
// the remote store, every circle member gets a text. Delivery failures are
// logged and dropped; they must never affect the record's status.
func InitSOSListeners(db *gorm.DB, sms *notification.SMS) {
	util.Sig().Connect(models.SigSOSSynced, func(sender any, params ...any) {
		rec, ok := sender.(*models.SOSRecord)
		if !ok {
			return
		}
		members, err := models.ListCircleMembers(db, rec.UserID)
		if err != nil {
			logger.Warn("circle lookup failed, no alerts sent",
				zap.String("record", rec.ID), zap.Error(err))
			return
		}
		for _, m := range members {
			go notifyMember(sms, rec, m)
		}
	})
}

func notifyMember(sms *notification.SMS, rec *models.SOSRecord, m models.CircleMember) {
	ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
	defer cancel()

	params := map[string]string{
		"recordId": rec.ID,
		"time":     rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !rec.Location.IsSentinel() {
		params["mapsLink"] = fmt.Sprintf("https://maps.google.com/?q=%f,%f",
			rec.Location.Lat, rec.Location.Lng)
	}
	if err := sms.SendAlert(ctx, m.PhoneNumber, params); err != nil {
		logger.Warn("alert sms failed",
			zap.String("record", rec.ID),
			zap.String("member", m.ID),
			zap.Error(err))
	}
}

// InitPaymentListeners logs entitlement grants so support can trace them.
func InitPaymentListeners() {
	util.Sig().Connect(models.SigPaymentSucceeded, func(sender any, params ...any) {
		user, _ := sender.(string)
		plan := ""
		if len(params) > 0 {
			plan, _ = params[0].(string)
		}
		logger.Info("premium activated", zap.String("user", user), zap.String("plan", plan))
	})
}
