// Package test provides testing utilities for the service, like a MongoDB
// test container.
package test

import (
	"context"
	"fmt"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vocdoni/api-migrations/internal"
)

const (
	// MongoImage is the MongoDB image used by the test container.
	MongoImage = "mongo:7"
	// MongoPort is the port MongoDB listens on inside the container.
	MongoPort = "27017/tcp"
)

// StartMongoContainer starts a MongoDB container for testing. The connection
// string is returned by the container Endpoint method with the "mongodb"
// protocol.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	return testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        MongoImage,
				ExposedPorts: []string{MongoPort},
				WaitingFor: wait.ForAll(
					wait.ForLog("Waiting for connections"),
					wait.ForListeningPort(nat.Port(MongoPort)),
				),
			},
			Started: true,
		})
}

// RandomDatabaseName returns a database name that does not collide with the
// ones of other tests.
func RandomDatabaseName() string {
	return fmt.Sprintf("test-%s", internal.RandomHex(8))
}
