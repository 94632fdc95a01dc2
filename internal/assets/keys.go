// Package assets loads and prepares the sprite set a replay needs for
// rendering: world tiles, agent poses, monster variants, the power-up shield
// and the scrolling background. Each asset carries both its bitmap and its
// semantic label color so the renderer can paint either representation.
package assets

// Maze tile symbols used by the game engine.
const (
	Space          = '.'
	Ladder         = '='
	LavaSurface    = '^'
	LavaMiddle     = '|'
	WallSurface    = 'S'
	WallMiddle     = 'A'
	WallCliffLeft  = 'a'
	WallCliffRight = 'b'
	CoinObj1       = '1'
	CoinObj2       = '2'
	SpikeObj       = 'P'
	CrateNormal    = '#'
	CrateDouble    = '$'
	CrateSingle    = '&'
	CrateWarning   = '%'
)

// worldTiles lists every drawable tile symbol, in no particular order.
var worldTiles = []byte{
	WallMiddle, WallSurface, WallCliffLeft, WallCliffRight,
	CoinObj1, CoinObj2,
	CrateNormal, CrateDouble, CrateSingle, CrateWarning,
	LavaMiddle, LavaSurface,
	SpikeObj, Ladder,
}

// Agent sprite variants present in the sprite sheets.
var agentPoses = []string{
	"walk1", "walk2", "climb1", "climb2", "stand", "jump", "duck", "hit",
}

// Monster sprite sheet suffixes. The base sprite has no suffix.
var monsterPoses = []string{"", "_move", "_dead"}

// IsLava reports whether a tile scrolls with the lava animation.
func IsLava(sym byte) bool {
	return sym == LavaMiddle || sym == LavaSurface
}

// BackgroundKey is the library key of the level background asset.
const BackgroundKey = "background"

// ShieldKey is the library key of the power-up bubble shield asset.
const ShieldKey = "shield"
