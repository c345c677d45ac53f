package store

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Local collection slots. One string-keyed row per entity collection,
// JSON-array-of-objects payloads (settings holds a single object, auth-flag a
// boolean string).
const (
	CollectionChildren  = "hb_children"
	CollectionParents   = "hb_parents"
	CollectionDailyLogs = "hb_daily_logs"
	CollectionHolidays  = "hb_holidays"
	CollectionSettings  = "hb_settings"
	CollectionSendLogs  = "hb_send_logs"
	CollectionAuthFlag  = "hb_auth_token"
)

type collectionRow struct {
	Name    string `gorm:"primary_key;column:name"`
	Payload []byte `gorm:"column:payload"`
}

func (collectionRow) TableName() string {
	return "collections"
}

// LocalStore is the device-local durable store: always available, synchronous,
// the source of truth when the cloud mirror is unreachable.
type LocalStore struct {
	Db *gorm.DB `inject:""`
}

func (l *LocalStore) Migrate() error {
	return l.Db.AutoMigrate(&collectionRow{}).Error
}

// Get returns the raw payload of a collection, or nil when the slot has never
// been written.
func (l *LocalStore) Get(collection string) ([]byte, error) {
	row := collectionRow{}
	res := l.Db.Where("name = ?", collection).First(&row)
	if res.RecordNotFound() {
		return nil, nil
	}
	if err := res.Error; err != nil {
		return nil, err
	}
	return row.Payload, nil
}

// Set overwrites the whole collection. Callers never see partial writes.
func (l *LocalStore) Set(collection string, payload []byte) error {
	row := collectionRow{Name: collection, Payload: payload}
	if l.Db.Model(&collectionRow{}).Where("name = ?", collection).Update("payload", payload).RowsAffected == 0 {
		return l.Db.Create(&row).Error
	}
	return nil
}

// Delete clears a collection slot entirely.
func (l *LocalStore) Delete(collection string) error {
	return l.Db.Where("name = ?", collection).Delete(&collectionRow{}).Error
}
