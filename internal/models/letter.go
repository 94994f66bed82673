package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Letter is one submitted thank-you message addressed to a country.
type Letter struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WriterName        string             `bson:"name" json:"name"`
	School            string             `bson:"school,omitempty" json:"school,omitempty"`
	Grade             string             `bson:"grade,omitempty" json:"grade,omitempty"`
	OriginalContent   string             `bson:"originalContent" json:"originalContent"`
	TranslatedContent string             `bson:"translatedContent" json:"translatedContent"`
	CountryID         string             `bson:"countryId" json:"countryId"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// TranslationPlaceholder is stored when a letter arrives without a
// translation. Translation happens elsewhere; until then readers see the
// original text.
func TranslationPlaceholder(original string) string {
	return original
}
