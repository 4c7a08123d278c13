//go:build integration

// Package testsupport starts backing services for integration tests.
package testsupport

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartDynamoDB launches dynamodb-local in memory and returns the container plus its HTTP endpoint.
func StartDynamoDB(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "amazon/dynamodb-local:2.5.2",
		Cmd:          []string{"-jar", "DynamoDBLocal.jar", "-inMemory", "-sharedDb"},
		ExposedPorts: []string{"8000/tcp"},
		WaitingFor: wait.ForHTTP("/").
			WithPort("8000/tcp").
			WithStatusCodeMatcher(func(status int) bool { return status >= 200 && status < 500 }),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "8000/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}
