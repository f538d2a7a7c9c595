// models/catalog.go - Cached GW2 achievement catalog
package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"tyriatrack/engine"
)

// AchievementGroup mirrors /v2/achievements/groups. Group ids are upstream
// GUID strings.
type AchievementGroup struct {
	ID          uint           `json:"-" gorm:"primaryKey"`
	GW2ID       string         `json:"id" gorm:"uniqueIndex;size:64;not null"`
	Name        string         `json:"name" gorm:"not null;index"`
	Description string         `json:"description" gorm:"type:text"`
	Order       int            `json:"order" gorm:"index"`
	Categories  datatypes.JSON `json:"categories"` // []int of category ids

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AchievementCategory mirrors /v2/achievements/categories.
type AchievementCategory struct {
	ID          uint           `json:"-" gorm:"primaryKey"`
	GW2ID       int            `json:"id" gorm:"uniqueIndex;not null"`
	Name        string         `json:"name" gorm:"not null;index"`
	Description string         `json:"description" gorm:"type:text"`
	Order       int            `json:"order"`
	Icon        string         `json:"icon" gorm:"size:255"`
	GroupName   string         `json:"group_name" gorm:"index"`
	Achievements datatypes.JSON `json:"achievements"` // []int of achievement ids

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Achievement is one cached catalog entry. Structured payload fields
// (flags, tiers, rewards, prerequisites) are stored as JSON columns exactly
// as upstream sends them; they decode into engine types on snapshot load.
type Achievement struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	GW2ID       int    `json:"id" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text"`
	Requirement string `json:"requirement" gorm:"type:text"`
	Type        string `json:"type" gorm:"size:50;index"`

	Flags         datatypes.JSON `json:"flags"`
	Tiers         datatypes.JSON `json:"tiers"`
	Rewards       datatypes.JSON `json:"rewards"`
	Prerequisites datatypes.JSON `json:"prerequisites"`

	CategoryName string `json:"category_name" gorm:"size:100;index"`
	GroupName    string `json:"group_name" gorm:"size:100"`
	PointTotal   int    `json:"point_total" gorm:"default:0"`

	// Community curation tags, set locally rather than synced.
	IsLegendary       bool `json:"is_legendary" gorm:"default:false"`
	CommunityPriority bool `json:"community_priority" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToEngine decodes the JSON columns into the engine's achievement type.
// Malformed columns yield an error; callers skip such rows rather than
// failing the whole snapshot.
func (a Achievement) ToEngine() (engine.Achievement, error) {
	out := engine.Achievement{
		ID:                a.GW2ID,
		Name:              a.Name,
		Description:       a.Description,
		Requirement:       a.Requirement,
		Type:              a.Type,
		Legendary:         a.IsLegendary,
		CommunityPriority: a.CommunityPriority,
	}
	for _, col := range []struct {
		raw  datatypes.JSON
		dest interface{}
	}{
		{a.Flags, &out.Flags},
		{a.Tiers, &out.Tiers},
		{a.Rewards, &out.Rewards},
		{a.Prerequisites, &out.Prerequisites},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return engine.Achievement{}, err
		}
	}
	return out, nil
}

// Item is a hydrated reward item, fetched lazily after the catalog sync.
type Item struct {
	ID          uint   `json:"-" gorm:"primaryKey"`
	GW2ID       int    `json:"id" gorm:"uniqueIndex;not null"`
	Name        string `json:"name" gorm:"index"`
	Rarity      string `json:"rarity" gorm:"size:20;index"`
	VendorValue int    `json:"vendor_value" gorm:"default:0"`
	Type        string `json:"type" gorm:"size:50"`
	BagSize     int    `json:"bag_size" gorm:"default:0"`
	Icon        string `json:"icon" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Title is a hydrated reward title.
type Title struct {
	ID    uint   `json:"-" gorm:"primaryKey"`
	GW2ID int    `json:"id" gorm:"uniqueIndex;not null"`
	Name  string `json:"name" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AchievementGroup) TableName() string {
	return "achievement_groups"
}

func (AchievementCategory) TableName() string {
	return "achievement_categories"
}

func (Achievement) TableName() string {
	return "achievements"
}

func (Item) TableName() string {
	return "items"
}

func (Title) TableName() string {
	return "titles"
}
