// Package monitor parses the engine's monitor.csv session logs into replay
// records. The format is line-tagged: a leading keyword selects how the
// following lines are decoded, and field counts are checked exactly because
// a short line means the log is corrupt, not that a default applies.
package monitor

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vovakirdan/coinrun-replay/internal/replay"
)

// Field counts written by the engine. A mismatch is a malformed log.
const (
	gameHeaderFields = 5
	agentFields      = 16
	monsterFields    = 12
	eatCoinFields    = 3
)

// GameHandler receives each fully parsed level. Returning an error aborts
// the parse.
type GameHandler func(g *replay.Game) error

// ParseFile reads a monitor.csv log and invokes handle once per completed
// level, in log order. It returns the number of levels and total frames
// parsed.
func ParseFile(path string, handle GameHandler) (levels, frames int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("monitor: cannot open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return 0, 0, fmt.Errorf("monitor: cannot read %s: %w", path, err)
	}

	p := &parser{lines: lines, game: replay.NewGame(), gameID: -1}
	if err := p.run(handle); err != nil {
		return 0, 0, fmt.Errorf("monitor: %s: %w", path, err)
	}
	return p.levels, p.frames, nil
}

func readLines(f *os.File) ([]string, error) {
	sc := bufio.NewScanner(f)
	// Maze rows are maze_w*maze_h comma fields on a single line
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

type parser struct {
	lines []string

	game       *replay.Game
	gameID     int
	frameID    int
	coinsEaten []replay.Coord

	levels int
	frames int
}

func (p *parser) run(handle GameHandler) error {
	for i, line := range p.lines {
		var err error
		switch {
		case strings.HasPrefix(line, "game_id"):
			err = p.parseGameHeader(i, handle)
		case strings.HasPrefix(line, "time_alive"):
			err = p.parseFrame(i)
		case strings.HasPrefix(line, "background_themes"):
			err = p.parseThemes(i)
		case strings.HasPrefix(line, "eat_coin"):
			err = p.parseEatCoin(i)
		default:
			// Lines the converter does not consume (rewards, blank
			// separators) are skipped.
		}
		if err != nil {
			return err
		}
	}

	// Flush the trailing level
	if len(p.game.Frames) > 0 {
		p.game.FlattenMonsterNames()
		if err := handle(p.game); err != nil {
			return err
		}
		p.levels++
	}
	return nil
}

// parseGameHeader handles a level restart: flushes the previous level and
// reads the seed/theme line and the maze line that follow the tag.
func (p *parser) parseGameHeader(i int, handle GameHandler) error {
	if p.gameID >= 0 {
		p.game.FlattenMonsterNames()
		if err := handle(p.game); err != nil {
			return err
		}
		p.levels++
		p.game.Reset()
	}

	p.gameID++
	p.frameID = 0
	p.coinsEaten = nil

	// line +1: game_id,maze_seed,zoom,world_theme_n,agent_theme_n
	data, err := p.fields(i+1, gameHeaderFields)
	if err != nil {
		return err
	}
	id, err := atoi(data[0], i+1)
	if err != nil {
		return err
	}
	if id != p.gameID {
		return fmt.Errorf("line %d: game id %d, expected %d", i+2, id, p.gameID)
	}
	p.game.GameID = p.gameID
	if p.game.LevelSeed, err = atoi(data[1], i+1); err != nil {
		return err
	}
	if p.game.Zoom, err = atof(data[2], i+1); err != nil {
		return err
	}
	if p.game.WorldTheme, err = atoi(data[3], i+1); err != nil {
		return err
	}
	if p.game.AgentTheme, err = atoi(data[4], i+1); err != nil {
		return err
	}

	// line +2: the maze as maze_h*maze_w single-character fields
	maze, err := p.fields(i+2, p.game.MazeH*p.game.MazeW)
	if err != nil {
		return err
	}
	rows := make([]string, p.game.MazeH)
	for y := 0; y < p.game.MazeH; y++ {
		rows[y] = strings.Join(maze[y*p.game.MazeW:(y+1)*p.game.MazeW], "")
	}
	p.game.Maze = rows
	return nil
}

// parseFrame reads one tick: the agent line one below the tag and the
// monster line three below it.
func (p *parser) parseFrame(i int) error {
	data, err := p.fields(i+1, agentFields)
	if err != nil {
		return err
	}

	frame := &replay.Frame{
		FrameID:  p.frameID,
		FileName: replay.FrameFileName(p.gameID, p.frameID),
		// Copy by value so later eat_coin lines do not mutate this frame
		CoinsEaten: append([]replay.Coord(nil), p.coinsEaten...),
	}

	agent := &replay.Agent{}
	if agent.TimeAlive, err = atoi(data[0], i+1); err != nil {
		return err
	}
	if agent.X, err = atof(data[1], i+1); err != nil {
		return err
	}
	if agent.Y, err = atof(data[2], i+1); err != nil {
		return err
	}
	if agent.VX, err = atof(data[3], i+1); err != nil {
		return err
	}
	if agent.VY, err = atof(data[4], i+1); err != nil {
		return err
	}
	// data[5] is agent_facing_right, ignored: facing is derived from vx
	if agent.Ladder, err = aflag(data[6], i+1); err != nil {
		return err
	}
	if agent.Spring, err = atof(data[7], i+1); err != nil {
		return err
	}
	if agent.IsKilled, err = aflag(data[8], i+1); err != nil {
		return err
	}
	if agent.KilledAnimFrameCnt, err = atoi(data[9], i+1); err != nil {
		return err
	}
	if agent.FinishedFrameCnt, err = atoi(data[10], i+1); err != nil {
		return err
	}
	if agent.KilledMonster, err = aflag(data[11], i+1); err != nil {
		return err
	}
	if agent.BumpedHead, err = aflag(data[12], i+1); err != nil {
		return err
	}
	if agent.CollectedCoin, err = aflag(data[13], i+1); err != nil {
		return err
	}
	if agent.CollectedGem, err = aflag(data[14], i+1); err != nil {
		return err
	}
	if agent.PowerUpMode, err = aflag(data[15], i+1); err != nil {
		return err
	}
	agent.Derive()
	frame.Agent = agent

	// line +3: state_time,monster_count,(12 fields per monster)
	mdata, err := p.monsterFields(i + 3)
	if err != nil {
		return err
	}
	// state_time may not match time_alive near level end; the world
	// animation clock follows state_time
	if frame.StateTime, err = atoi(mdata[0], i+3); err != nil {
		return err
	}
	count, err := atoi(mdata[1], i+3)
	if err != nil {
		return err
	}
	if len(mdata)-2 != count*monsterFields {
		return fmt.Errorf("line %d: %d monster fields for %d monsters", i+4, len(mdata)-2, count)
	}

	for mi := 0; mi < count; mi++ {
		m, err := p.parseMonster(mdata[2+mi*monsterFields:2+(mi+1)*monsterFields], frame.StateTime, i+3)
		if err != nil {
			return err
		}
		frame.Monsters = append(frame.Monsters, m)
	}

	p.game.Frames = append(p.game.Frames, frame)
	p.frameID++
	p.frames++
	return nil
}

func (p *parser) parseMonster(data []string, stateTime, line int) (*replay.Monster, error) {
	m := &replay.Monster{Time: stateTime}
	var err error
	if m.ID, err = atoi(data[0], line); err != nil {
		return nil, err
	}
	if m.X, err = atof(data[1], line); err != nil {
		return nil, err
	}
	if m.Y, err = atof(data[2], line); err != nil {
		return nil, err
	}
	if m.VX, err = atof(data[3], line); err != nil {
		return nil, err
	}
	if m.VY, err = atof(data[4], line); err != nil {
		return nil, err
	}
	if m.Theme, err = atoi(data[5], line); err != nil {
		return nil, err
	}
	if m.IsFlying, err = aflag(data[6], line); err != nil {
		return nil, err
	}
	if m.IsWalking, err = aflag(data[7], line); err != nil {
		return nil, err
	}
	if m.IsJumping, err = aflag(data[8], line); err != nil {
		return nil, err
	}
	if m.IsDead, err = aflag(data[9], line); err != nil {
		return nil, err
	}
	if m.AnimFreq, err = atoi(data[10], line); err != nil {
		return nil, err
	}
	if m.DyingFrameCnt, err = atoi(data[11], line); err != nil {
		return nil, err
	}
	m.Derive()
	return m, nil
}

// parseThemes reads the six theme/monster-name lines. The engine emits
// these once per session, before the first level header.
func (p *parser) parseThemes(i int) error {
	p.game.BackgroundThemes = splitLine(p.lines[i])[1:]

	ground, err := p.taggedLine(i+1, "ground_themes")
	if err != nil {
		return err
	}
	p.game.GroundThemes = ground

	agents, err := p.taggedLine(i+2, "agent_themes")
	if err != nil {
		return err
	}
	p.game.AgentThemes = agents

	for off, group := range []string{"ground", "flying", "walking"} {
		names, err := p.taggedLine(i+3+off, "monster_names")
		if err != nil {
			return err
		}
		p.game.MonsterNames[group] = names
	}
	return nil
}

func (p *parser) parseEatCoin(i int) error {
	data := splitLine(p.lines[i])
	if len(data) != eatCoinFields {
		return fmt.Errorf("line %d: eat_coin has %d fields, expected %d", i+1, len(data), eatCoinFields)
	}
	x, err := atoi(data[1], i)
	if err != nil {
		return err
	}
	y, err := atoi(data[2], i)
	if err != nil {
		return err
	}
	p.coinsEaten = append(p.coinsEaten, replay.Coord{x, y})
	return nil
}

// fields returns the comma fields of line i and checks the count exactly.
func (p *parser) fields(i, want int) ([]string, error) {
	if i >= len(p.lines) {
		return nil, fmt.Errorf("line %d: unexpected end of log", i+1)
	}
	data := splitLine(p.lines[i])
	if len(data) != want {
		return nil, fmt.Errorf("line %d: %d fields, expected %d", i+1, len(data), want)
	}
	return data, nil
}

// monsterFields returns the monster line, which has a variable but
// structured field count: 2 + 12 per monster.
func (p *parser) monsterFields(i int) ([]string, error) {
	if i >= len(p.lines) {
		return nil, fmt.Errorf("line %d: unexpected end of log", i+1)
	}
	data := splitLine(p.lines[i])
	if len(data) < 2 || (len(data)-2)%monsterFields != 0 {
		return nil, fmt.Errorf("line %d: malformed monster line (%d fields)", i+1, len(data))
	}
	return data, nil
}

// taggedLine returns the data fields of line i after stripping its tag.
func (p *parser) taggedLine(i int, tag string) ([]string, error) {
	if i >= len(p.lines) {
		return nil, fmt.Errorf("line %d: unexpected end of log (%s)", i+1, tag)
	}
	data := splitLine(p.lines[i])
	if len(data) < 1 {
		return nil, fmt.Errorf("line %d: empty %s line", i+1, tag)
	}
	return data[1:], nil
}

// splitLine strips the commas the engine pads rows with, then splits on
// commas.
func splitLine(l string) []string {
	return strings.Split(strings.Trim(strings.TrimSpace(l), ","), ",")
}

func atoi(s string, line int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("line %d: bad integer %q", line+1, s)
	}
	return v, nil
}

func atof(s string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad float %q", line+1, s)
	}
	return v, nil
}

// aflag parses a 0/1 flag.
func aflag(s string, line int) (bool, error) {
	v, err := atoi(s, line)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}
