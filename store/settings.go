package store

import (
	"context"
	"time"

	"github.com/bookhaven/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetOrCreateSiteSettings returns the singleton settings document,
// creating it with defaults on first read. The upsert on the fixed _id is
// atomic, so concurrent first reads cannot create duplicates.
func (db *DB) GetOrCreateSiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	filter := bson.M{"_id": models.SiteSettingsID}
	update := bson.M{"$setOnInsert": bson.M{
		"underConstruction":        false,
		"underConstructionMessage": "",
		"updatedAt":                time.Now(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var settings models.SiteSettings
	if err := db.SiteSettings().FindOneAndUpdate(ctx, filter, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSiteSettings overwrites the singleton settings document.
func (db *DB) UpdateSiteSettings(ctx context.Context, underConstruction bool, message string) (*models.SiteSettings, error) {
	filter := bson.M{"_id": models.SiteSettingsID}
	update := bson.M{"$set": bson.M{
		"underConstruction":        underConstruction,
		"underConstructionMessage": message,
		"updatedAt":                time.Now(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var settings models.SiteSettings
	if err := db.SiteSettings().FindOneAndUpdate(ctx, filter, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
