package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/models"
	"vitrina/internal/testutil"
)

func seedProduct(t *testing.T, repo *models.ProductsRepository, name string, urls ...string) *models.Product {
	t.Helper()
	ctx := context.Background()
	p := &models.Product{Name: name, Description: name + " description", Price: 1000}
	require.NoError(t, repo.Create(ctx, p))
	for _, u := range urls {
		require.NoError(t, repo.AddImage(ctx, &models.ProductImage{ProductID: p.ID, URL: u}))
	}
	return p
}

func TestProductsRepository_ListAndGet(t *testing.T) {
	ctx := context.Background()
	repo := models.NewProductsRepository(testutil.SQLite(t))

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	chair := seedProduct(t, repo, "Chair", "/static/uploads/a.jpg", "/static/uploads/b.png")
	seedProduct(t, repo, "Table")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Chair", all[0].Name)
	assert.Equal(t, "Table", all[1].Name)

	got, err := repo.GetByID(ctx, chair.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chair", got.Name)
	assert.Equal(t, int64(1000), got.Price)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "/static/uploads/a.jpg", got.Images[0].URL)
	assert.Equal(t, "/static/uploads/b.png", got.Images[1].URL)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, errors.Is(err, models.ErrProductNotFound))
}

func TestProductsRepository_UpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	repo := models.NewProductsRepository(testutil.SQLite(t))
	p := seedProduct(t, repo, "Chair")

	p.Description = ""
	p.Price = 0
	p.MainImage = "/static/uploads/x.jpg"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)
	assert.Zero(t, got.Price)
	assert.Equal(t, "/static/uploads/x.jpg", got.MainImage)

	missing := &models.Product{Base: models.Base{ID: 4242}, Name: "ghost"}
	assert.True(t, errors.Is(repo.Update(ctx, missing), models.ErrProductNotFound))
}

func TestProductsRepository_DeleteImagesOnlyOwned(t *testing.T) {
	ctx := context.Background()
	repo := models.NewProductsRepository(testutil.SQLite(t))
	chair := seedProduct(t, repo, "Chair", "/static/uploads/a.jpg", "/static/uploads/b.png")
	table := seedProduct(t, repo, "Table", "/static/uploads/t.jpg")

	chairImages, err := repo.ImagesOf(ctx, chair.ID)
	require.NoError(t, err)
	tableImages, err := repo.ImagesOf(ctx, table.ID)
	require.NoError(t, err)

	removed, err := repo.DeleteImages(ctx, chair.ID, []uint{chairImages[0].ID, tableImages[0].ID})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "/static/uploads/a.jpg", removed[0].URL)

	left, err := repo.ImagesOf(ctx, chair.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "/static/uploads/b.png", left[0].URL)

	stillThere, err := repo.ImagesOf(ctx, table.ID)
	require.NoError(t, err)
	assert.Len(t, stillThere, 1, "images of other products are untouched")

	none, err := repo.DeleteImages(ctx, chair.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductsRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := models.NewProductsRepository(testutil.SQLite(t))
	chair := seedProduct(t, repo, "Chair", "/static/uploads/a.jpg", "/static/uploads/b.png")

	removed, err := repo.Delete(ctx, chair.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	left, err := repo.ImagesOf(ctx, chair.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = repo.GetByID(ctx, chair.ID)
	assert.True(t, errors.Is(err, models.ErrProductNotFound))

	_, err = repo.Delete(ctx, chair.ID)
	assert.True(t, errors.Is(err, models.ErrProductNotFound))
}

func TestProductsRepository_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := models.NewProductsRepository(testutil.SQLite(t))
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx *models.ProductsRepository) error {
		p := &models.Product{Name: "Doomed"}
		if err := tx.Create(ctx, p); err != nil {
			return err
		}
		if err := tx.AddImage(ctx, &models.ProductImage{ProductID: p.ID, URL: "/static/uploads/d.jpg"}); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAdminsRepository(t *testing.T) {
	ctx := context.Background()
	repo := models.NewAdminsRepository(testutil.SQLite(t))

	_, err := repo.GetByUsername(ctx, "root")
	assert.True(t, errors.Is(err, models.ErrAdminNotFound))

	u, created, err := repo.SetPassword(ctx, "root", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "s3cret", u.HashPassword)

	got, err := repo.Authenticate(ctx, "root", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.Authenticate(ctx, "root", "wrong")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	assert.False(t, errors.Is(err, models.ErrAdminNotFound), "a wrong password is not a missing user")
	_, err = repo.Authenticate(ctx, "nobody", "s3cret")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))

	again, created, err := repo.SetPassword(ctx, "root", "changed")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)

	_, err = repo.Authenticate(ctx, "root", "s3cret")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	_, err = repo.Authenticate(ctx, "root", "changed")
	assert.NoError(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := models.HashPassword("pa55")
	require.NoError(t, err)
	assert.True(t, models.CheckPassword(hash, "pa55"))
	assert.False(t, models.CheckPassword(hash, "pa56"))
	assert.False(t, models.CheckPassword("not-a-hash", "pa55"))
}
