package database_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"exercisetracker/internal/config"
	"exercisetracker/internal/database"
	"exercisetracker/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     config.DriverSQLite,
		DatabaseDSN:  fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		StoreTimeout: 5 * time.Second,
	}
	store, err := database.Open(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, config.DriverSQLite, store.Driver)
	assert.NoError(t, store.Ping(context.Background()))

	ctx := context.Background()
	user := &models.User{Username: "grace"}
	require.NoError(t, store.Users.Create(ctx, user))
	require.NoError(t, store.Exercises.Create(ctx, &models.Exercise{UserID: user.ID, Description: "bike", Duration: 45}))

	log, err := store.Exercises.FindByUser(ctx, user.ID, models.LogFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestOpenMemory(t *testing.T) {
	store, err := database.Open(context.Background(), &config.Config{
		DBDriver:     config.DriverMemory,
		StoreTimeout: time.Second,
	}, quietLogger())
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}

func TestOpenFailsFast(t *testing.T) {
	cases := []*config.Config{
		{DBDriver: config.DriverMongo, MongoURI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", MongoDatabase: "x", StoreTimeout: time.Second},
		{DBDriver: config.DriverPostgres, DatabaseDSN: "host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1", StoreTimeout: 2 * time.Second},
		{DBDriver: "cassandra", StoreTimeout: time.Second},
	}
	for _, cfg := range cases {
		t.Run(cfg.DBDriver, func(t *testing.T) {
			store, err := database.Open(context.Background(), cfg, quietLogger())
			assert.Error(t, err)
			assert.Nil(t, store)
		})
	}
}
