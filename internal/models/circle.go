package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CircleCategory string

const (
	CategorySibling   CircleCategory = "Sibling"
	CategoryFriends   CircleCategory = "Friends"
	CategoryFamily    CircleCategory = "Family"
	CategoryEmergency CircleCategory = "Emergency"
	CategoryOther     CircleCategory = "Other"
)

// CircleMember is one emergency contact in an owner's circle. A phone
// number appears at most once per owner.
type CircleMember struct {
	ID             string         `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID        string         `gorm:"index;uniqueIndex:idx_owner_phone" json:"ownerId"`
	PhoneNumber    string         `gorm:"uniqueIndex:idx_owner_phone" json:"phoneNumber"`
	Name           string         `json:"name"`
	Category       CircleCategory `json:"category"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	IsRegistered   bool           `json:"isRegistered"`
	AddedAt        time.Time      `json:"addedAt"`
}

// AddCircleMember inserts a contact, marking IsRegistered when the phone
// number belongs to an existing account.
func AddCircleMember(db *gorm.DB, ownerID string, m CircleMember) (*CircleMember, error) {
	m.ID = uuid.NewString()
	m.OwnerID = ownerID
	if m.Category == "" {
		m.Category = CategoryOther
	}
	m.AddedAt = time.Now()

	existing, err := FindUserByPhone(db, m.PhoneNumber)
	if err != nil {
		return nil, err
	}
	m.IsRegistered = existing != nil

	if err := db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListCircleMembers returns the owner's circle in insertion order.
func ListCircleMembers(db *gorm.DB, ownerID string) ([]CircleMember, error) {
	var members []CircleMember
	err := db.Where("owner_id = ?", ownerID).Order("added_at").Find(&members).Error
	return members, err
}

// RemoveCircleMember deletes one contact from the owner's circle.
func RemoveCircleMember(db *gorm.DB, ownerID, memberID string) error {
	res := db.Where("owner_id = ? AND id = ?", ownerID, memberID).Delete(&CircleMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
