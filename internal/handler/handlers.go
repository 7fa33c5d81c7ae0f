// Package handlers exposes the HTTP surface: the payment endpoints and
// webhook the mobile client's backend needs, plus circle and records
// routes.
package handlers

import (
	"safecircle/internal/payment"
	"safecircle/internal/queue"
	"safecircle/internal/sos"

	"gorm.io/gorm"
)

type Handlers struct {
	db         *gorm.DB
	payments   *payment.Service
	reconciler *payment.Reconciler
	cardFlow   *payment.CardFlow
	sosManager *sos.Manager
	queue      *queue.Queue
}

func New(db *gorm.DB, payments *payment.Service, reconciler *payment.Reconciler, card *payment.CardFlow, m *sos.Manager, q *queue.Queue) *Handlers {
	return &Handlers{
		db:         db,
		payments:   payments,
		reconciler: reconciler,
		cardFlow:   card,
		sosManager: m,
		queue:      q,
	}
}
