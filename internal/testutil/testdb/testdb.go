// Package testdb opens a temp sqlite database seeded with the sample dataset
// and wires the data-access services over it.
package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"fight-timeline/internal/database"
	"fight-timeline/internal/dataset"
	"fight-timeline/internal/repository"
	"fight-timeline/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type DB struct {
	SQL    *sql.DB
	Access *service.DataAccess
}

// New seeds a fresh database:
//
//	alice  W f1 bob, L f2 carol, W f4 dave   (initial)
//	bob    L f1 alice, D f5 carol
//	carol  W f2 alice, W f3 dave, D f5 bob   (initial)
//	dave   L f3 carol, L f4 alice
func New(t testing.TB) DB {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.Open(filepath.Join(t.TempDir(), "fights.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fighters := repository.NewFighterRepository(db, logger)
	fights := repository.NewFightRepository(db, logger)
	events := repository.NewEventRepository(db, logger)
	promotions := repository.NewPromotionRepository(db, logger)

	ds, err := dataset.Sample()
	require.NoError(t, err)
	_, err = dataset.NewLoader(promotions, events, fighters, fights, logger).Load(context.Background(), ds)
	require.NoError(t, err)

	return DB{
		SQL: db,
		Access: service.NewDataAccess(
			service.NewBoundsService(fighters, logger),
			service.NewFighterService(fighters, logger),
			service.NewFightService(fights, logger),
			service.NewCatalogService(events, promotions, logger),
		),
	}
}
