package video

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Sound effect slots in an audio map row. The ninth slot is not an effect
// but the power-up mode flag for that frame.
const (
	EffectLadder = iota
	EffectJump
	EffectWalk
	EffectBumpHead
	EffectKilled
	EffectCollectCoin
	EffectMonsterKilled
	EffectPowerUp

	NumEffects  = 8
	AudioMapLen = 9
)

// Row is the audio state of one frame: which effects fired plus whether
// power-up mode was active.
type Row [AudioMapLen]bool

// Effect reports whether the given effect slot fired.
func (r Row) Effect(i int) bool { return r[i] }

// PowerUpMode reports whether power-up mode was active for the frame.
func (r Row) PowerUpMode() bool { return r[AudioMapLen-1] }

var levelHeaderRe = regexp.MustCompile(`level_([0-9]{4})`)

// ParseAudioMap reads an audio_map.txt file produced during data
// collection. The file interleaves level headers (any line containing
// level_NNNN) with one comma-separated row of 0/1 flags per frame.
func ParseAudioMap(path string) (map[int][]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("video: cannot open audio map: %w", err)
	}
	defer f.Close()

	levels := make(map[int][]Row)
	curr := 0
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		if m := levelHeaderRe.FindStringSubmatch(line); m != nil {
			curr = atoiLevel(m[1])
			levels[curr] = nil
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("video: audio map line %d: %w", lineNo, err)
		}
		levels[curr] = append(levels[curr], row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("video: reading audio map: %w", err)
	}
	return levels, nil
}

func parseRow(line string) (Row, error) {
	var row Row
	fields := strings.Split(line, ",")
	if len(fields) != AudioMapLen {
		return row, fmt.Errorf("expected %d flags, got %d", AudioMapLen, len(fields))
	}
	for i, f := range fields {
		switch f {
		case "0":
		case "1":
			row[i] = true
		default:
			return row, fmt.Errorf("flag %d is %q, want 0 or 1", i, f)
		}
	}
	return row, nil
}

func atoiLevel(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
