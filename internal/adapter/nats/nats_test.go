package nats

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/counterteams-service/internal/entity"
	"github.com/user/counterteams-service/internal/repository"
)

func startJetStream(t *testing.T) jetstream.JetStream {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start")
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	return js
}

func TestCollectionRepo(t *testing.T) {
	ctx := context.Background()
	repo, err := NewCollectionRepo(ctx, startJetStream(t), "counterteams-test")
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c)

	stored := entity.Collection{
		"cliff": {
			Title:       "Cliff Counters",
			Headers:     []string{"Meowth"},
			Rows:        [][]string{{"Machamp"}},
			LastUpdated: "2024-03-15T10:30:00Z",
		},
	}
	require.NoError(t, repo.Save(ctx, stored))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cliff Counters", loaded["cliff"].Title)
	assert.Equal(t, [][]string{{"Machamp"}}, loaded["cliff"].Rows)

	_, err = repo.kv.Put(ctx, collectionKey, []byte("{not json"))
	require.NoError(t, err)
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrCorruptCollection)
}

func TestImageRepo(t *testing.T) {
	ctx := context.Background()
	repo, err := NewImageRepo(ctx, startJetStream(t), "counterteams-images-test")
	require.NoError(t, err)

	ok, err := repo.Exists(ctx, "0a1b2c3d.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.Get(ctx, "0a1b2c3d.png")
	assert.ErrorIs(t, err, repository.ErrImageNotFound)

	require.NoError(t, repo.Put(ctx, "0a1b2c3d.png", []byte("\x89PNG"), "image/png"))

	ok, err = repo.Exists(ctx, "0a1b2c3d.png")
	require.NoError(t, err)
	assert.True(t, ok)

	data, contentType, err := repo.Get(ctx, "0a1b2c3d.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
	assert.Equal(t, "image/png", contentType)
}
