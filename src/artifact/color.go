package artifact

import "image/color"

// Star colors of the detail panel header, index 0 is one star.
var starColors = [5]color.RGBA{
	{113, 119, 139, 255},
	{42, 143, 114, 255},
	{81, 127, 203, 255},
	{161, 86, 224, 255},
	{188, 105, 50, 255},
}

var lockColor = color.RGBA{255, 138, 117, 255}

const (
	// maxStarDistance is the squared distance above which a star match is rejected.
	maxStarDistance = 10000
	// maxLockDistance is 30*30.
	maxLockDistance = 900
)

// ColorDistance is the squared RGB distance.
func ColorDistance(a, b color.RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// RarityFromColor returns the nearest star color. ok is false when the
// nearest palette entry is too far to trust.
func RarityFromColor(c color.RGBA) (rarity int, ok bool) {
	best, bestDist := 0, -1
	for i, sc := range starColors {
		d := ColorDistance(c, sc)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best + 1, bestDist <= maxStarDistance
}

// LockFromColor reports whether the lock badge color is present.
func LockFromColor(c color.RGBA) bool {
	return ColorDistance(c, lockColor) < maxLockDistance
}
