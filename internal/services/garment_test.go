package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGarmentFixture() (*GarmentService, *fakeGarmentStore) {
	store := newFakeGarmentStore(nil)
	return NewGarmentService(store), store
}

func validGarmentInput() GarmentInput {
	return GarmentInput{
		Name:     "Blue Oxford Shirt",
		Category: "tops",
		ImageURL: "https://images.example.com/u1/shirt.jpg",
	}
}

func TestCreateGarmentValidation(t *testing.T) {
	svc, _ := newGarmentFixture()
	ctx := context.Background()

	blankName := validGarmentInput()
	blankName.Name = " "
	_, err := svc.CreateGarment(ctx, testUser, blankName)
	assert.ErrorIs(t, err, ErrGarmentNameRequired)

	noCategory := validGarmentInput()
	noCategory.Category = ""
	_, err = svc.CreateGarment(ctx, testUser, noCategory)
	assert.ErrorIs(t, err, ErrCategoryRequired)

	noImage := validGarmentInput()
	noImage.ImageURL = ""
	_, err = svc.CreateGarment(ctx, testUser, noImage)
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestCreateGarmentStartsUnrated(t *testing.T) {
	svc, store := newGarmentFixture()
	ctx := context.Background()

	garment, err := svc.CreateGarment(ctx, testUser, validGarmentInput())
	require.NoError(t, err)

	assert.Equal(t, 0, garment.Rating)
	assert.False(t, garment.Favorite)

	stored, err := store.GetByID(ctx, testUser, garment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue Oxford Shirt", stored.Name)
}

func TestRateGarmentClampsRange(t *testing.T) {
	svc, store := newGarmentFixture()
	ctx := context.Background()

	created, err := svc.CreateGarment(ctx, testUser, validGarmentInput())
	require.NoError(t, err)

	tests := []struct {
		in   int
		want int
	}{
		{7, 5},
		{-3, 0},
		{4, 4},
		{0, 0},
	}
	for _, tt := range tests {
		require.NoError(t, svc.RateGarment(ctx, testUser, created.ID, tt.in))
		stored, _ := store.GetByID(ctx, testUser, created.ID)
		assert.Equal(t, tt.want, stored.Rating)
	}
}

func TestListGarmentsFilters(t *testing.T) {
	svc, _ := newGarmentFixture()
	ctx := context.Background()

	shirt := validGarmentInput()
	created, err := svc.CreateGarment(ctx, testUser, shirt)
	require.NoError(t, err)

	pants := validGarmentInput()
	pants.Name = "Chinos"
	pants.Category = "bottoms"
	_, err = svc.CreateGarment(ctx, testUser, pants)
	require.NoError(t, err)

	require.NoError(t, svc.SetFavorite(ctx, testUser, created.ID, true))

	tops, err := svc.ListGarments(ctx, testUser, "tops", false)
	require.NoError(t, err)
	require.Len(t, tops, 1)
	assert.Equal(t, created.ID, tops[0].ID)

	favorites, err := svc.ListGarments(ctx, testUser, "", true)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, created.ID, favorites[0].ID)

	all, err := svc.ListGarments(ctx, testUser, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := svc.CountGarments(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
