package layout

import "artifact-scanner/src/geometry"

// Default returns the inventory template measured at 1920x1080.
func Default() Layout {
	regions := []Region{
		{ID: ItemName, Rect: geometry.R(1338, 120, 440, 40), Required: true},
		{ID: MainStatName, Rect: geometry.R(1340, 205, 250, 30), Required: true},
		{ID: MainStatValue, Rect: geometry.R(1340, 238, 250, 48), Required: true},
		{ID: Level, Rect: geometry.R(1352, 362, 62, 26)},
		{ID: Rarity, Rect: geometry.R(1340, 300, 200, 36), Required: true},
		{ID: SubStat1, Rect: geometry.R(1356, 410, 355, 30)},
		{ID: SubStat2, Rect: geometry.R(1356, 447, 355, 30)},
		{ID: SubStat3, Rect: geometry.R(1356, 484, 355, 30)},
		{ID: SubStat4, Rect: geometry.R(1356, 521, 355, 30)},
		{ID: Equip, Rect: geometry.R(1378, 1000, 360, 32)},
	}
	aux := []Region{
		{ID: ItemCounter, Rect: geometry.R(1330, 110, 460, 450)},
		{ID: InventoryCount, Rect: geometry.R(1600, 30, 240, 36)},
	}
	grid := Grid{
		Origin:            geometry.Pt(117, 127),
		Cell:              geometry.Sz(123, 152),
		Gap:               geometry.Sz(23, 22),
		Rows:              5,
		Cols:              8,
		ScrollTicksPerRow: 5,
	}
	samples := map[string]geometry.Point{
		SampleRarityColor: geometry.Pt(1365, 180),
		SampleLockColor:   geometry.Pt(1754, 362),
		SampleScrollFlag:  geometry.Pt(125, 280),
	}
	l, err := New("inventory-1920x1080", geometry.Sz(1920, 1080), regions, aux, grid, samples)
	if err != nil {
		panic(err)
	}
	return l
}
