package paymenttx

import "gorm.io/gorm"

// AutoMigrate creates or updates the four payment store tables: the two
// data copies, the secondary index and the audit log.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&transactionRow{},
		&transactionByDateRow{},
		&transactionIndexRow{},
		&transactionLogRow{},
	)
}
