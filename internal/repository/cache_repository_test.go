package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/dmurtari/mbu-online-sub002/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "occupancy:off-1", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "occupancy:off-1", map[string]int{"1": 2}, time.Minute))

	gen, err := repo.Generation(ctx, "occupancy:off-1:gen")
	assert.NoError(t, err)
	assert.Zero(t, gen)
	assert.NoError(t, repo.Bump(ctx, "occupancy:off-1:gen"))
}
