package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetClientVersion pins the API version of a client, replacing any previous
// pin.
func (ms *MongoStorage) SetClientVersion(clientID, version string) error {
	if clientID == "" || version == "" {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pin := ClientVersion{
		ClientID:  clientID,
		Version:   version,
		UpdatedAt: time.Now(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := ms.clients.ReplaceOne(ctx, bson.M{"_id": clientID}, pin, opts); err != nil {
		return fmt.Errorf("cannot set client version: %w", err)
	}
	return nil
}

// ClientVersion returns the pinned API version of a client, or ErrNotFound.
func (ms *MongoStorage) ClientVersion(clientID string) (*ClientVersion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pin := &ClientVersion{}
	if err := ms.clients.FindOne(ctx, bson.M{"_id": clientID}).Decode(pin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cannot get client version: %w", err)
	}
	return pin, nil
}

// DelClientVersion removes the pin of a client. Removing a missing pin is
// not an error.
func (ms *MongoStorage) DelClientVersion(clientID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ms.clients.DeleteOne(ctx, bson.M{"_id": clientID}); err != nil {
		return fmt.Errorf("cannot delete client version: %w", err)
	}
	return nil
}

// ClientsPinnedTo returns the ids of the clients pinned to the given version.
func (ms *MongoStorage) ClientsPinnedTo(version string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cursor, err := ms.clients.Find(ctx, bson.M{"version": version})
	if err != nil {
		return nil, fmt.Errorf("cannot find clients: %w", err)
	}
	var pins []ClientVersion
	if err := cursor.All(ctx, &pins); err != nil {
		return nil, fmt.Errorf("cannot decode clients: %w", err)
	}
	ids := make([]string, 0, len(pins))
	for _, pin := range pins {
		ids = append(ids, pin.ClientID)
	}
	return ids, nil
}
