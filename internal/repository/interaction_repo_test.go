package repository

import (
	"context"
	"testing"

	"Applyhub/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionRepoMembership(t *testing.T) {
	t.Parallel()
	repo := NewInteractionRepo(newTestDB(t))
	ctx := context.Background()
	ref := model.ContentRef{Type: model.ContentNews, ID: 5}

	exists, err := repo.CheckInteractionExists(ctx, 1, ref, model.KindBookmark)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.CreateInteraction(ctx, &model.Interaction{
		UserID: 1, ContentType: ref.Type, ContentID: ref.ID, Kind: model.KindBookmark,
	}))
	err = repo.CreateInteraction(ctx, &model.Interaction{
		UserID: 1, ContentType: ref.Type, ContentID: ref.ID, Kind: model.KindBookmark,
	})
	assert.True(t, IsDuplicateError(err))

	require.NoError(t, repo.CreateInteraction(ctx, &model.Interaction{
		UserID: 1, ContentType: ref.Type, ContentID: ref.ID, Kind: model.KindLike,
	}))
	require.NoError(t, repo.CreateInteraction(ctx, &model.Interaction{
		UserID: 2, ContentType: ref.Type, ContentID: ref.ID, Kind: model.KindLike,
	}))

	kinds, err := repo.GetInteractionKinds(ctx, 1, ref)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.InteractionKind{model.KindLike, model.KindBookmark}, kinds)

	likes, err := repo.CountInteractions(ctx, ref, model.KindLike)
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes)

	n, err := repo.DeleteInteraction(ctx, 1, ref, model.KindBookmark)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteInteraction(ctx, 1, ref, model.KindBookmark)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionRepoListUserInteractions(t *testing.T) {
	t.Parallel()
	repo := NewInteractionRepo(newTestDB(t))
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, repo.CreateInteraction(ctx, &model.Interaction{
			UserID: 7, ContentType: model.ContentEvent, ContentID: i, Kind: model.KindBookmark,
		}))
	}
	require.NoError(t, repo.CreateInteraction(ctx, &model.Interaction{
		UserID: 7, ContentType: model.ContentEvent, ContentID: 9, Kind: model.KindLike,
	}))

	page, err := repo.ListUserInteractions(ctx, 7, model.KindBookmark, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.ListUserInteractions(ctx, 7, model.KindBookmark, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
