package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/milktracker/internal/common"
	"github.com/dmitrijs2005/milktracker/internal/models"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHerdService_CRUD(t *testing.T) {
	s := NewHerdService(nil, repomanager.NewMemoryRepositoryManager())
	ctx := context.Background()

	h, err := s.Create(ctx, 1, models.HerdInput{Name: "North", CowCount: 12})
	require.NoError(t, err)

	got, err := s.Get(ctx, 1, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "North", got.Name)

	up, err := s.Update(ctx, 1, h.ID, models.HerdInput{Name: "North field", CowCount: 14})
	require.NoError(t, err)
	assert.Equal(t, 14, up.CowCount)

	list, err := s.List(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.Delete(ctx, 1, h.ID)
	require.NoError(t, err)
	_, err = s.Get(ctx, 1, h.ID)
	assert.Equal(t, "Herd not found", detail(err))
}

func TestHerdService_ForeignHerdIsNotFound(t *testing.T) {
	s := NewHerdService(nil, repomanager.NewMemoryRepositoryManager())
	ctx := context.Background()
	h, err := s.Create(ctx, 1, models.HerdInput{Name: "North", CowCount: 1})
	require.NoError(t, err)

	_, err = s.Get(ctx, 2, h.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Update(ctx, 2, h.ID, models.HerdInput{Name: "x"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = s.Delete(ctx, 2, h.ID)
	assert.Equal(t, "Herd not found", detail(err))
}

func TestHerdService_Validation(t *testing.T) {
	s := NewHerdService(nil, repomanager.NewMemoryRepositoryManager())
	_, err := s.Create(context.Background(), 1, models.HerdInput{Name: " "})
	assert.ErrorIs(t, err, common.ErrorValidation)
	_, err = s.Create(context.Background(), 1, models.HerdInput{Name: "A", CowCount: -1})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestPagination(t *testing.T) {
	for _, tc := range []struct{ skip, limit, wantSkip, wantLimit int }{
		{0, 0, 0, 100},
		{-3, -1, 0, 100},
		{5, 10, 5, 10},
	} {
		s, l := pagination(tc.skip, tc.limit)
		assert.Equal(t, tc.wantSkip, s)
		assert.Equal(t, tc.wantLimit, l)
	}
}
