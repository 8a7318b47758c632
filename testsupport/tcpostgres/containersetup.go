package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultImage = "postgres:16-alpine"
	pgPort       = nat.Port("5432/tcp")
)

type (
	ContainerOption func(c *containerConfig)

	containerConfig struct {
		req                    testcontainers.ContainerRequest
		user, password, dbName string
	}
)

// WithName names the container. Named containers are reused between test runs.
func WithName(containerName string) ContainerOption {
	return func(c *containerConfig) {
		c.req.Name = containerName
	}
}

func WithCredentials(user, password, dbName string) ContainerOption {
	return func(c *containerConfig) {
		c.user, c.password, c.dbName = user, password, dbName
	}
}

// postgres logs this once for the init phase and once when really started
func readyLog() *wait.LogStrategy {
	return wait.ForLog("database system is ready to accept connections").
		WithOccurrence(2)
}

// StartPostgres starts a postgres container and returns its connection url
//
//nolint:whitespace // can't make both editor and linter happy
func StartPostgres(ctx context.Context, opts ...ContainerOption) (
	container testcontainers.Container, dbURL string, err error,
) {
	c := &containerConfig{
		req: testcontainers.ContainerRequest{
			Image:        defaultImage,
			ExposedPorts: []string{string(pgPort)},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
			WaitingFor:   readyLog().WithStartupTimeout(30 * time.Second),
		},
		user:     "postgres",
		password: "password",
		dbName:   "postgres",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.req.Env = map[string]string{
		"POSTGRES_USER":     c.user,
		"POSTGRES_PASSWORD": c.password,
		"POSTGRES_DB":       c.dbName,
	}

	container, err = testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: c.req,
			Started:          true,
			Reuse:            c.req.Name != "",
		})
	if err != nil {
		return nil, "", err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, pgPort)
	if err != nil {
		return nil, "", err
	}
	dbURL = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.user, c.password, host, port.Port(), c.dbName)
	return container, dbURL, nil
}
