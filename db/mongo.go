// Package db stores the client API version pins and the posts of the service
// in MongoDB.
package db

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

// MongoStorage uses an external MongoDB service for storing the client
// version pins and the posts.
type MongoStorage struct {
	client   *mongo.Client
	database string

	clients *mongo.Collection
	posts   *mongo.Collection
}

// New connects to MongoDB and initializes the collections and indexes. If
// the VOCDONI_MONGO_RESET_DB environment variable is set, the database
// documents are dropped first.
func New(url, database string) (*MongoStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	// preparing connection
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	// create a new client with the connection options
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	ms := &MongoStorage{
		client:   client,
		database: database,
	}
	if err := ms.initCollections(); err != nil {
		return nil, err
	}
	if reset := os.Getenv("VOCDONI_MONGO_RESET_DB"); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
	} else if err := ms.createIndexes(); err != nil {
		return nil, err
	}
	return ms, nil
}

// Close disconnects from MongoDB.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops every document and recreates the indexes.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.clients.Drop(ctx); err != nil {
		return err
	}
	if err := ms.posts.Drop(ctx); err != nil {
		return err
	}
	return ms.createIndexes()
}

// initCollections creates the missing collections and keeps a handle of
// each one.
func (ms *MongoStorage) initCollections() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	db := ms.client.Database(ms.database)
	current, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("cannot list collections: %w", err)
	}
	getCollection := func(name string) (*mongo.Collection, error) {
		if !slices.Contains(current, name) {
			if err := db.CreateCollection(ctx, name); err != nil {
				return nil, fmt.Errorf("cannot create collection %s: %w", name, err)
			}
		}
		return db.Collection(name), nil
	}
	if ms.clients, err = getCollection("clients"); err != nil {
		return err
	}
	if ms.posts, err = getCollection("posts"); err != nil {
		return err
	}
	return nil
}

func (ms *MongoStorage) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	// pins are listed by version when a version is retired
	clientVersionIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "version", Value: 1}},
	}
	if _, err := ms.clients.Indexes().CreateOne(ctx, clientVersionIndex); err != nil {
		return fmt.Errorf("failed to create index on version for clients: %w", err)
	}
	postAuthorIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "author", Value: 1}},
	}
	if _, err := ms.posts.Indexes().CreateOne(ctx, postAuthorIndex); err != nil {
		return fmt.Errorf("failed to create index on author for posts: %w", err)
	}
	return nil
}
