package service

import (
	"fight-timeline/internal/selection"
)

// DataAccess is the in-process data source backed by the local database.
type DataAccess struct {
	*BoundsService
	*FighterService
	*FightService
	*CatalogService
}

var _ selection.DataSource = (*DataAccess)(nil)

func NewDataAccess(b *BoundsService, f *FighterService, fs *FightService, c *CatalogService) *DataAccess {
	return &DataAccess{BoundsService: b, FighterService: f, FightService: fs, CatalogService: c}
}
