package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/sidhant-sriv/db-auth/db"
	"github.com/sidhant-sriv/db-auth/db/dbtest"
	"github.com/sidhant-sriv/db-auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Clients(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)

	require.NoError(t, store.CreateClient(ctx, &models.Client{
		Nom: "Dupont", Prenom: "Jean", Email: "j@x.com", Password: "pw",
	}))

	c, err := store.FindClientByCredentials(ctx, "j@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", c.Nom)
	assert.Equal(t, "Jean", c.Prenom)
	assert.Nil(t, c.ProfileImage)

	_, err = store.FindClientByCredentials(ctx, "j@x.com", "wrong")
	assert.ErrorIs(t, err, db.ErrNotFound)

	require.NoError(t, store.UpdateClientNames(ctx, "j@x.com", "Martin", "Paul"))
	require.NoError(t, store.UpdateClientImage(ctx, "j@x.com", "/uploads/profile-1-2.png"))

	c, err = store.FindClientByCredentials(ctx, "j@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Martin", c.Nom)
	assert.Equal(t, "Paul", c.Prenom)
	assert.Equal(t, "/uploads/profile-1-2.png", c.ImagePath())
}

func TestStore_Objets(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)

	objets, err := store.ListObjets(ctx)
	require.NoError(t, err)
	assert.NotNil(t, objets)
	assert.Empty(t, objets)

	require.NoError(t, store.CreateObjet(ctx, &models.Objet{Objet: "Chaise", Prix: "19.99"}))
	require.NoError(t, store.CreateObjet(ctx, &models.Objet{Objet: "Chaise", Prix: "19.99"}))
	require.NoError(t, store.CreateObjet(ctx, &models.Objet{Objet: "Table", Prix: "120.5"}))

	objets, err = store.ListObjets(ctx)
	require.NoError(t, err)
	require.Len(t, objets, 3)
	assert.Equal(t, "Chaise", objets[0].Objet)
	assert.Equal(t, "19.99", objets[0].Prix)

	// delete by value takes every duplicate
	n, err := store.DeleteObjets(ctx, "Chaise", "19.99")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.DeleteObjets(ctx, "Chaise", "19.99")
	require.NoError(t, err)
	assert.Zero(t, n)

	objets, err = store.ListObjets(ctx)
	require.NoError(t, err)
	require.Len(t, objets, 1)
	assert.Equal(t, "Table", objets[0].Objet)
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	rec := &models.SessionRecord{ID: "sid-1", Email: "j@x.com", Nom: "Dupont", Prenom: "Jean", ExpiresAt: exp}
	require.NoError(t, store.CreateSession(ctx, rec))

	got, err := store.FindSession(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", got.Nom)
	assert.True(t, got.ExpiresAt.Equal(exp))

	img := "/uploads/a.png"
	got.Nom = "Martin"
	got.ProfileImage = &img
	require.NoError(t, store.SaveSession(ctx, got))

	got, err = store.FindSession(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Martin", got.Nom)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, img, *got.ProfileImage)

	require.NoError(t, store.DeleteSession(ctx, "sid-1"))
	_, err = store.FindSession(ctx, "sid-1")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestStore_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)
	now := time.Now()

	require.NoError(t, store.CreateSession(ctx, &models.SessionRecord{ID: "old", Email: "a@x.com", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, store.CreateSession(ctx, &models.SessionRecord{ID: "live", Email: "b@x.com", ExpiresAt: now.Add(time.Hour)}))

	n, err := store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.FindSession(ctx, "old")
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = store.FindSession(ctx, "live")
	assert.NoError(t, err)
}

func TestStore_ClosedConnection(t *testing.T) {
	ctx := context.Background()
	store := dbtest.NewStore(t)
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())

	assert.Error(t, store.Ping(ctx))
	_, err := store.ListObjets(ctx)
	assert.Error(t, err)
}
