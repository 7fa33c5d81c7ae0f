package models

import "gorm.io/gorm"

// Migrate creates the remote-facing tables. The local SOS queue migrates
// its own table against its own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&CircleMember{},
		&SOSRecord{},
		&PaymentLedgerEntry{},
	)
}
