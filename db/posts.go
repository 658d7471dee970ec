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

// SetPost creates or replaces a post.
func (ms *MongoStorage) SetPost(post *Post) error {
	if post == nil || post.ID == "" {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	post.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	if _, err := ms.posts.ReplaceOne(ctx, bson.M{"_id": post.ID}, post, opts); err != nil {
		return fmt.Errorf("cannot set post: %w", err)
	}
	return nil
}

// Post returns the post with the given id, or ErrNotFound.
func (ms *MongoStorage) Post(id string) (*Post, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	post := &Post{}
	if err := ms.posts.FindOne(ctx, bson.M{"_id": id}).Decode(post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cannot get post: %w", err)
	}
	return post, nil
}

// DelPost removes a post. Returns ErrNotFound if it did not exist.
func (ms *MongoStorage) DelPost(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := ms.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
