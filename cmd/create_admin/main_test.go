package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/testhelpers"
)

func TestEnsureAdmin(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	ctx := context.Background()

	admin, created, err := ensureAdmin(ctx, db, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "관리자", admin.Name)
	require.True(t, admin.HasPassword())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte("s3cret-pass")))

	again, created, err := ensureAdmin(ctx, db, "other-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureAdmin_WithoutPassword(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)

	admin, created, err := ensureAdmin(context.Background(), db, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.False(t, admin.HasPassword())
}
