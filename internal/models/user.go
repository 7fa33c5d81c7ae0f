package models

import (
	"time"

	"gorm.io/gorm"
)

// AnonymousUserID marks SOS records triggered before sign-in.
const AnonymousUserID = "anonymous"

type User struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string `json:"name"`
	Email       string `gorm:"index" json:"email"`
	PhoneNumber string `gorm:"uniqueIndex" json:"phoneNumber"`
	PhotoURL    string `json:"photoURL,omitempty"`

	// Premium entitlement. Only the card confirmation flow mutates these.
	IsPremium         bool       `json:"isPremium"`
	PremiumPlan       string     `json:"premiumPlan,omitempty"`
	PremiumStartDate  *time.Time `json:"premiumStartDate,omitempty"`
	LastPaymentAmount float64    `json:"lastPaymentAmount,omitempty"`
	LastPaymentDate   *time.Time `json:"lastPaymentDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindUserByPhone returns nil without error when no account matches.
func FindUserByPhone(db *gorm.DB, phone string) (*User, error) {
	var u User
	err := db.Where("phone_number = ?", phone).First(&u).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser fetches a user by id.
func GetUser(db *gorm.DB, id string) (*User, error) {
	var u User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GrantPremium flips the premium flag and records last-payment metadata.
func GrantPremium(db *gorm.DB, userID, plan string, amount float64, at time.Time) error {
	return db.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_premium":          true,
		"premium_plan":        plan,
		"premium_start_date":  at,
		"last_payment_amount": amount,
		"last_payment_date":   at,
		"updated_at":          at,
	}).Error
}
