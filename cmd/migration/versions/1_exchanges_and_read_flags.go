package versions

import (
	"log"

	"gorm.io/gorm"
)

func migrateMessages(txn *gorm.DB) error {
	log.Println("migrating table 'messages'")

	type Message struct {
		Read bool `gorm:"not null;default:false"`
	}

	if !txn.Migrator().HasColumn(&Message{}, "read") {
		if err := txn.Migrator().AddColumn(&Message{}, "Read"); err != nil {
			return err
		}
	}

	log.Println("table 'messages' migration complete")

	return nil
}

func migrateNotifications(txn *gorm.DB) error {
	log.Println("migrating table 'notifications'")

	type Notification struct {
		Read bool `gorm:"not null;default:false"`
	}

	if !txn.Migrator().HasColumn(&Notification{}, "read") {
		if err := txn.Migrator().AddColumn(&Notification{}, "Read"); err != nil {
			return err
		}
	}

	log.Println("table 'notifications' migration complete")

	return nil
}

func createExchanges(txn *gorm.DB) error {
	log.Println("creating table 'exchanges'")

	type Exchange struct {
		Id         string `gorm:"type:uuid;primaryKey"`
		ShiftId    string `gorm:"type:uuid;not null;index"`
		FromUserId string `gorm:"type:uuid;not null;index"`
		ToUserId   string `gorm:"type:uuid;not null;index"`
		Status     string `gorm:"size:50;not null;default:'pending'"`
	}

	if txn.Migrator().HasTable(&Exchange{}) {
		return nil
	}

	if err := txn.Migrator().CreateTable(&Exchange{}); err != nil {
		return err
	}

	log.Println("table 'exchanges' created")

	return nil
}

// Migration_1_exchanges_and_read_flags brings databases created before the
// shift exchange feature up to the current schema.
func Migration_1_exchanges_and_read_flags(txn *gorm.DB) error {
	if err := migrateMessages(txn); err != nil {
		return err
	}

	if err := migrateNotifications(txn); err != nil {
		return err
	}

	if err := createExchanges(txn); err != nil {
		return err
	}

	return nil
}
