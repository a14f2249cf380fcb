package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/Kunj2411/Lokmanya-ATS/pkg/errors"
)

func TestCacheRepositoryDisabled(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "reports:x", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "reports:x", []string{"a"}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "reports:*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
