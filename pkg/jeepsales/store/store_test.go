package store

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekruzvatanshoev/jeepsales/pkg/jeepsales/dal"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "root@/jeeps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrate_SeedsCatalog(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	version, err := db.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// applying again is a no-op
	require.NoError(t, db.Migrate(ctx))

	repo := dal.NewSQLRepository(db, db.Dialect())
	all, err := repo.FetchJeeps(ctx, dal.JeepFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 14)

	sport, err := repo.FetchJeeps(ctx, dal.JeepFilter{Model: ptr(dal.Wrangler), Trim: ptr("Sport")})
	require.NoError(t, err)
	require.Len(t, sport, 2)

	byDoors := map[int]dal.Jeep{}
	for _, j := range sport {
		byDoors[j.NumDoors] = j
	}
	assert.True(t, decimal.RequireFromString("28475.00").Equal(byDoors[2].BasePrice))
	assert.True(t, decimal.RequireFromString("31975.00").Equal(byDoors[4].BasePrice))
	assert.Equal(t, 17, byDoors[2].WheelSize)
}

func TestRoundTrip(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	repo := dal.NewSQLRepository(db, db.Dialect())

	want := dal.Jeep{
		ModelID:   dal.Gladiator,
		TrimLevel: "Rubicon",
		NumDoors:  4,
		WheelSize: 17,
		BasePrice: decimal.RequireFromString("45765.50"),
	}

	created, err := repo.CreateJeep(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, int64(15), created.ModelPK)

	got, err := repo.FetchJeeps(ctx, dal.JeepFilter{Model: ptr(dal.Gladiator), Trim: ptr("Rubicon")})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, created.ModelPK, got[0].ModelPK)
	assert.Equal(t, want.ModelID, got[0].ModelID)
	assert.Equal(t, want.TrimLevel, got[0].TrimLevel)
	assert.Equal(t, want.NumDoors, got[0].NumDoors)
	assert.Equal(t, want.WheelSize, got[0].WheelSize)
	assert.True(t, want.BasePrice.Equal(got[0].BasePrice), "got %s", got[0].BasePrice)
}

func TestCreateJeep_RejectedPriceLeavesCatalogReadable(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	repo := dal.NewSQLRepository(db, db.Dialect())

	for _, price := range []string{"-100.00", "26495.999"} {
		_, err := repo.CreateJeep(ctx, dal.Jeep{
			ModelID:   dal.Compass,
			TrimLevel: "Trailhawk",
			NumDoors:  4,
			WheelSize: 17,
			BasePrice: decimal.RequireFromString(price),
		})
		assert.ErrorIs(t, err, dal.ErrInvalidPrice, price)
	}

	got, err := repo.FetchJeeps(ctx, dal.JeepFilter{Model: ptr(dal.Compass)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Latitude", got[0].TrimLevel)
}

func TestMigrate_Concurrent(t *testing.T) {
	ctx := context.Background()

	dbs := make([]*DB, 4)
	for i := range dbs {
		db, err := Open(ctx, DriverSQLite, ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		dbs[i] = db
	}

	var wg sync.WaitGroup
	errs := make([]error, len(dbs))
	for i, db := range dbs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = db.Migrate(ctx)
		}()
	}
	wg.Wait()

	for i, db := range dbs {
		require.NoError(t, errs[i])
		version, err := db.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)

		all, err := dal.NewSQLRepository(db, db.Dialect()).FetchJeeps(ctx, dal.JeepFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 14)
	}
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "?", (&DB{driver: DriverSQLite}).Dialect()(1))
	assert.Equal(t, "$3", (&DB{driver: DriverPostgres}).Dialect()(3))
}
