package assets

import "image/color"

// Scheme selects how semantic labels are encoded in rendered output.
type Scheme int

const (
	// SchemeRGB paints each category as a distinct RGB color.
	SchemeRGB Scheme = iota
	// SchemeCompact paints single-channel labels packed into 0..22,
	// matching the training data layout.
	SchemeCompact
	// SchemeReadable paints single-channel labels spread over 0..255 so
	// the maps are inspectable by eye.
	SchemeReadable
)

// SingleChannel reports whether the scheme produces grayscale output.
func (s Scheme) SingleChannel() bool {
	return s == SchemeCompact || s == SchemeReadable
}

// Table maps symbolic asset categories to their label colors.
type Table struct {
	Background color.Color
	World      map[byte]color.Color
	Agent      color.Color
	Shield     color.Color
	Monster    map[string]color.Color
}

// Colors returns the semantic color table for a scheme. Monster entries
// cover every name the engine can emit, including types not enabled in the
// current engine build.
func Colors(scheme Scheme) Table {
	switch scheme {
	case SchemeCompact:
		return grayTable(map[byte]uint8{
			WallMiddle: 3, WallSurface: 4, WallCliffLeft: 5, WallCliffRight: 6,
			CoinObj1: 19, CoinObj2: 20,
			CrateNormal: 8, CrateDouble: 8, CrateSingle: 8, CrateWarning: 8,
			LavaMiddle: 1, LavaSurface: 2,
			Ladder: 7,
		}, 22, 21, map[string]uint8{
			"sawHalf": 16, "bee": 15, "slimeBlock": 14,
			"slimePurple": 13, "slimeBlue": 13, "slimeGreen": 13,
			"mouse": 12, "snail": 11, "ladybug": 10,
			"wormGreen": 9, "wormPink": 9,
			"barnacle": 17, "frog": 18,
		})
	case SchemeReadable:
		return grayTable(map[byte]uint8{
			WallMiddle: 40, WallSurface: 50, WallCliffLeft: 55, WallCliffRight: 60,
			CoinObj1: 220, CoinObj2: 230,
			CrateNormal: 100, CrateDouble: 100, CrateSingle: 100, CrateWarning: 100,
			LavaMiddle: 10, LavaSurface: 20,
			SpikeObj: 30, Ladder: 70,
		}, 255, 250, map[string]uint8{
			"sawHalf": 200, "bee": 190, "slimeBlock": 180,
			"slimePurple": 170, "slimeBlue": 170, "slimeGreen": 170,
			"mouse": 160, "snail": 150, "ladybug": 140,
			"wormGreen": 130, "wormPink": 130,
			"barnacle": 120, "frog": 110,
		})
	default:
		return Table{
			Background: rgb(0, 0, 0),
			World: map[byte]color.Color{
				WallMiddle:     rgb(139, 69, 19),  // saddle brown
				WallSurface:    rgb(0, 255, 0),    // lime
				WallCliffLeft:  rgb(0, 128, 0),    // green
				WallCliffRight: rgb(0, 100, 0),    // dark green
				CoinObj1:       rgb(255, 255, 0),  // yellow
				CoinObj2:       rgb(255, 69, 0),   // orange red
				CrateNormal:    rgb(205, 133, 63), // peru
				CrateDouble:    rgb(205, 133, 63),
				CrateSingle:    rgb(205, 133, 63),
				CrateWarning:   rgb(205, 133, 63),
				LavaMiddle:     rgb(255, 0, 0),
				LavaSurface:    rgb(255, 0, 0),
				SpikeObj:       rgb(176, 196, 222), // light steel blue
				Ladder:         rgb(244, 164, 96),  // sandy brown
			},
			Agent:  rgb(0, 0, 255),
			Shield: rgb(0, 0, 128), // navy
			Monster: map[string]color.Color{
				"sawHalf":     rgb(169, 169, 169),
				"bee":         rgb(255, 215, 0),
				"slimeBlock":  rgb(255, 192, 203),
				"slimePurple": rgb(255, 192, 203),
				"slimeBlue":   rgb(255, 192, 203),
				"slimeGreen":  rgb(255, 192, 203),
				"mouse":       rgb(230, 230, 250),
				"snail":       rgb(255, 0, 255),
				"ladybug":     rgb(210, 105, 30),
				"wormGreen":   rgb(154, 205, 50),
				"wormPink":    rgb(154, 205, 50),
				"barnacle":    rgb(85, 85, 85),
				"frog":        rgb(190, 190, 50),
			},
		}
	}
}

func rgb(r, g, b uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func grayTable(world map[byte]uint8, agent, shield uint8, monster map[string]uint8) Table {
	t := Table{
		Background: color.Gray{},
		World:      make(map[byte]color.Color, len(world)),
		Agent:      color.Gray{Y: agent},
		Shield:     color.Gray{Y: shield},
		Monster:    make(map[string]color.Color, len(monster)),
	}
	for k, v := range world {
		t.World[k] = color.Gray{Y: v}
	}
	for k, v := range monster {
		t.Monster[k] = color.Gray{Y: v}
	}
	return t
}
