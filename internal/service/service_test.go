package service

import (
	"context"
	"testing"
	"time"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/ferremas/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceOf(v float64) *float64 {
	return &v
}

func newTestService() *Service {
	s := store.NewInMemoryStore()
	return NewService(s, s, s)
}

func mustCreate(t *testing.T, svc *Service, code string) *ProductDto {
	t.Helper()
	created, err := svc.CreateProduct(context.Background(), ProductCreateDto{
		Code:  code,
		Name:  "Hammer",
		Brand: "B",
		Model: "M",
		Stock: 10,
	})
	require.NoError(t, err)
	return created
}

func Test_CatalogService_CreateProduct(t *testing.T) {
	t.Run("Success - fresh code gets a new ID", func(t *testing.T) {
		// given
		svc := newTestService()
		// when
		created, err := svc.CreateProduct(context.Background(), ProductCreateDto{
			Code: "P1", Name: "Hammer", Brand: "B", Model: "M", Stock: 10,
		})
		// then
		require.NoError(t, err)
		assert.Equal(t, "P1", created.Code)
		assert.NotZero(t, created.ID)

		found, err := svc.FindByCode(context.Background(), "P1")
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("Error - duplicate code yields conflict and no second row", func(t *testing.T) {
		// given
		svc := newTestService()
		mustCreate(t, svc, "P1")
		// when
		_, err := svc.CreateProduct(context.Background(), ProductCreateDto{
			Code: "P1", Name: "Other", Stock: 1,
		})
		// then
		assert.ErrorIs(t, err, ferrors.ErrProductCodeExists)

		list, err := svc.FindAll(context.Background(), 0, 100)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func Test_CatalogService_FindByCode(t *testing.T) {
	svc := newTestService()
	mustCreate(t, svc, "P1")

	t.Run("Success - product found", func(t *testing.T) {
		found, err := svc.FindByCode(context.Background(), "P1")
		require.NoError(t, err)
		assert.Equal(t, "Hammer", found.Name)
		assert.Equal(t, int32(10), found.Stock)
	})

	t.Run("Error - unknown code", func(t *testing.T) {
		_, err := svc.FindByCode(context.Background(), "UNKNOWN")
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)
	})
}

func Test_CatalogService_FindAll_Pagination(t *testing.T) {
	// given
	svc := newTestService()
	codes := []string{"A", "B", "C", "D", "E"}
	for _, c := range codes {
		mustCreate(t, svc, c)
	}

	// when: successive pages of size 2 partition the set
	var seen []string
	for skip := int32(0); ; skip += 2 {
		page, err := svc.FindAll(context.Background(), skip, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page), 2)
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			seen = append(seen, p.Code)
		}
	}

	// then: no omission, no duplication, insertion order
	assert.Equal(t, codes, seen)
}

func Test_CatalogService_Update(t *testing.T) {
	t.Run("Success - all fields replaced", func(t *testing.T) {
		svc := newTestService()
		mustCreate(t, svc, "P1")

		updated, err := svc.Update(context.Background(), "P1", ProductCreateDto{
			Code: "P1", Name: "Hammer XL", Brand: "B2", Model: "M2", Stock: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(20), updated.Stock)
		assert.Equal(t, "Hammer XL", updated.Name)
	})

	t.Run("Success - body code renames the product", func(t *testing.T) {
		svc := newTestService()
		created := mustCreate(t, svc, "P1")

		updated, err := svc.Update(context.Background(), "P1", ProductCreateDto{
			Code: "P2", Name: "Hammer", Brand: "B", Model: "M", Stock: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, "P2", updated.Code)
		assert.Equal(t, created.ID, updated.ID)

		_, err = svc.FindByCode(context.Background(), "P1")
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)
	})

	t.Run("Error - rename onto a taken code", func(t *testing.T) {
		svc := newTestService()
		mustCreate(t, svc, "P1")
		mustCreate(t, svc, "P2")

		_, err := svc.Update(context.Background(), "P1", ProductCreateDto{
			Code: "P2", Name: "Hammer", Stock: 10,
		})
		assert.ErrorIs(t, err, ferrors.ErrProductCodeExists)
	})

	t.Run("Error - unknown code causes no mutation", func(t *testing.T) {
		svc := newTestService()
		mustCreate(t, svc, "P1")

		_, err := svc.Update(context.Background(), "UNKNOWN", ProductCreateDto{
			Code: "UNKNOWN", Name: "Nope", Stock: 1,
		})
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)

		found, err := svc.FindByCode(context.Background(), "P1")
		require.NoError(t, err)
		assert.Equal(t, "Hammer", found.Name)
	})
}

func Test_CatalogService_DeleteByCode(t *testing.T) {
	t.Run("Success - product and its history are gone", func(t *testing.T) {
		svc := newTestService()
		created := mustCreate(t, svc, "P1")
		_, err := svc.AddPrice(context.Background(), created.ID, PriceCreateDto{Price: priceOf(9900.0)})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteByCode(context.Background(), "P1"))

		_, err = svc.FindByCode(context.Background(), "P1")
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)

		history, err := svc.ListPrices(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Error - unknown code", func(t *testing.T) {
		svc := newTestService()
		err := svc.DeleteByCode(context.Background(), "UNKNOWN")
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)
	})
}

func Test_CatalogService_AddPrice(t *testing.T) {
	t.Run("Success - entry retrievable with the exact price", func(t *testing.T) {
		svc := newTestService()
		created := mustCreate(t, svc, "P1")

		entry, err := svc.AddPrice(context.Background(), created.ID, PriceCreateDto{Price: priceOf(9900.0)})
		require.NoError(t, err)
		assert.Equal(t, 9900.0, entry.Price)
		assert.Equal(t, created.ID, entry.ProductID)
		assert.False(t, entry.Timestamp.IsZero())

		history, err := svc.ListPrices(context.Background(), created.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, 9900.0, history[0].Price)
	})

	t.Run("Success - caller-supplied timestamp is kept", func(t *testing.T) {
		svc := newTestService()
		created := mustCreate(t, svc, "P1")
		ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

		entry, err := svc.AddPrice(context.Background(), created.ID, PriceCreateDto{Price: priceOf(100), Timestamp: &ts})
		require.NoError(t, err)
		assert.True(t, entry.Timestamp.Equal(ts))
	})

	t.Run("Error - nonexistent product inserts nothing", func(t *testing.T) {
		svc := newTestService()

		_, err := svc.AddPrice(context.Background(), 9999, PriceCreateDto{Price: priceOf(100)})
		assert.ErrorIs(t, err, ferrors.ErrProductNotFound)

		history, err := svc.ListPrices(context.Background(), 9999)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Error - missing price inserts nothing", func(t *testing.T) {
		svc := newTestService()
		created := mustCreate(t, svc, "P1")

		_, err := svc.AddPrice(context.Background(), created.ID, PriceCreateDto{})
		assert.Error(t, err)

		history, err := svc.ListPrices(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func Test_CatalogService_ListPrices_UnknownProductIsEmptyNotError(t *testing.T) {
	// Listing deliberately skips the existence check that the append path does.
	svc := newTestService()

	history, err := svc.ListPrices(context.Background(), 424242)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func Test_CatalogService_SubmitContact(t *testing.T) {
	svc := newTestService()

	contact, err := svc.SubmitContact(context.Background(), ContactCreateDto{
		Name:    "Ada",
		Email:   "a@b.com",
		Message: "Hello",
	})
	require.NoError(t, err)
	assert.NotZero(t, contact.ID)
	assert.Equal(t, "a@b.com", contact.Email)
	assert.Equal(t, "Hello", contact.Message)
}
