// models/preference.go - Client-keyed user preferences
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Preference stores a browser client's local settings server-side: the GW2
// API key it supplied, starred achievement ids and the catalog view toggle.
// There is no account system; the client id is an opaque identifier the
// frontend generates and keeps.
type Preference struct {
	ID       uint   `json:"-" gorm:"primaryKey"`
	ClientID string `json:"client_id" gorm:"uniqueIndex;size:64;not null"`

	APIKey      string         `json:"api_key" gorm:"size:128"`
	Starred     datatypes.JSON `json:"starred"` // []int of achievement ids
	CompactView bool           `json:"compact_view" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Preference) TableName() string {
	return "preferences"
}
