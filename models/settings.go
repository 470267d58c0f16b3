package models

import "time"

// SiteSettingsID is the fixed _id of the singleton settings document.
// Upserting on a fixed key keeps concurrent first reads from creating
// duplicates.
const SiteSettingsID = "global"

type SiteSettings struct {
	ID                       string    `bson:"_id" json:"-"`
	UnderConstruction        bool      `bson:"underConstruction" json:"underConstruction"`
	UnderConstructionMessage string    `bson:"underConstructionMessage" json:"underConstructionMessage"`
	UpdatedAt                time.Time `bson:"updatedAt" json:"updatedAt"`
}
