package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	appErrors "github.com/noah-isme/gratitude-api/pkg/errors"
)

// storeError maps driver failures onto the shared error taxonomy. Errors
// already typed, such as a missing connection string, pass through.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.Clone(appErrors.ErrNotFound, message+": not found")
	}
	return appErrors.Persistence(err, message)
}

func parseObjectID(id, kind string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, appErrors.Validation("invalid " + kind + " id")
	}
	return oid, nil
}
