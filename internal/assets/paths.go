package assets

import (
	"fmt"
	"path"
	"strings"

	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

// Files resolves the sprite file paths for one game's theme selection.
// Paths are relative to the asset root.
type Files struct {
	Background string
	World      map[byte]string
	Agent      map[string]string
	Shield     string
	Monster    map[string]string
}

// FilesFor derives the sprite paths from a game's theme indices. It fails
// when a theme index is out of range for the recorded theme tables.
func FilesFor(g *replay.Game) (Files, error) {
	if g.WorldTheme < 0 || g.WorldTheme >= len(g.BackgroundThemes) || g.WorldTheme >= len(g.GroundThemes) {
		return Files{}, fmt.Errorf("assets: world theme %d out of range", g.WorldTheme)
	}
	if g.AgentTheme < 0 || g.AgentTheme >= len(g.AgentThemes) {
		return Files{}, fmt.Errorf("assets: agent theme %d out of range", g.AgentTheme)
	}

	ground := g.GroundThemes[g.WorldTheme]
	walls := path.Join("kenney/Ground", ground, strings.ToLower(ground))

	atheme := g.AgentThemes[g.AgentTheme]
	alien := path.Join("kenneyLarge/Players/128x256_no_helmet", atheme, "alien"+atheme)

	const (
		tiles = "kenney/Tiles"
		items = "kenneyLarge/Items"
		enemy = "kenneyLarge/Enemies"
	)

	f := Files{
		Background: g.BackgroundThemes[g.WorldTheme],
		World: map[byte]string{
			WallMiddle:     walls + "Center.png",
			WallSurface:    walls + "Mid.png",
			WallCliffLeft:  walls + "Cliff_left.png",
			WallCliffRight: walls + "Cliff_right.png",
			CoinObj1:       path.Join(items, "coinGold.png"),
			CoinObj2:       path.Join(items, "gemRed.png"),
			CrateNormal:    path.Join(tiles, "boxCrate.png"),
			CrateDouble:    path.Join(tiles, "boxCrate_double.png"),
			CrateSingle:    path.Join(tiles, "boxCrate_single.png"),
			CrateWarning:   path.Join(tiles, "boxCrate_warning.png"),
			LavaMiddle:     path.Join(tiles, "lava.png"),
			LavaSurface:    path.Join(tiles, "lavaTop_low.png"),
			SpikeObj:       path.Join(tiles, "spikes.png"),
			Ladder:         path.Join(tiles, "ladderMid.png"),
		},
		Agent:   make(map[string]string, len(agentPoses)),
		Shield:  "bubble_shield.png",
		Monster: make(map[string]string, len(g.FlatMonsterNames)),
	}

	for _, pose := range agentPoses {
		f.Agent[pose] = alien + "_" + pose + ".png"
	}
	for _, name := range g.FlatMonsterNames {
		f.Monster[name] = path.Join(enemy, name+".png")
	}
	return f, nil
}
