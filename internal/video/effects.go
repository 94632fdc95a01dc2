package video

import (
	"fmt"
	"path/filepath"

	"github.com/vovakirdan/coinrun-replay/internal/audio"
)

// Effect wav files, indexed by the effect slots of a Row.
var effectFiles = [NumEffects]string{
	"ladder.wav",
	"jump.wav",
	"walk.wav",
	"bump_head.wav",
	"killed.wav",
	"collect_coin_notification_2.wav",
	"monster_killed.wav",
	"power_up.wav",
}

// effectPriority orders effect slots from most to least important when
// several fire on the same frame. Death beats everything, footsteps lose
// to everything.
var effectPriority = [NumEffects]int{
	EffectKilled,
	EffectPowerUp,
	EffectCollectCoin,
	EffectMonsterKilled,
	EffectJump,
	EffectBumpHead,
	EffectLadder,
	EffectWalk,
}

// minEffectDurations holds, per effect slot, the minimum number of video
// frames the effect keeps playing before a lower-priority trigger may
// interrupt it.
var minEffectDurations = [NumEffects]int{0, 0, 0, 0, 10, 4, 2, 8}

// noEffect marks frames where nothing fired.
const noEffect = -1

// Interesting reports whether a level with numFrames frames and the given
// audio rows is worth cutting clips from: it must fit at least one clip of
// minFrames frames and contain a death, coin pickup or monster kill.
func Interesting(rows []Row, numFrames, minFrames int) bool {
	if numFrames < minFrames {
		return false
	}
	for _, row := range rows {
		switch pickEffect(row) {
		case EffectKilled, EffectCollectCoin, EffectMonsterKilled:
			return true
		}
	}
	return false
}

// pickEffect resolves an audio map row to the single effect slot that
// should play, or noEffect.
func pickEffect(row Row) int {
	for _, idx := range effectPriority {
		if row.Effect(idx) {
			return idx
		}
	}
	return noEffect
}

func priorityRank(effect int) int {
	for rank, idx := range effectPriority {
		if idx == effect {
			return rank
		}
	}
	return NumEffects
}

// effectBank holds the decoded effect files plus the PCM parameters all
// tracks share.
type effectBank struct {
	readers [NumEffects]*audio.Reader
	params  audio.Params
}

func loadEffectBank(soundDir string) (*effectBank, error) {
	var b effectBank
	for i, name := range effectFiles {
		r, err := audio.ReadFile(filepath.Join(soundDir, name))
		if err != nil {
			return nil, err
		}
		b.readers[i] = r
	}
	// every effect file carries the same channel layout and rate
	b.params = b.readers[0].Params()
	for i := 1; i < NumEffects; i++ {
		p := b.readers[i].Params()
		if p.Channels != b.params.Channels || p.SampleRate != b.params.SampleRate || p.BitsPerSample != b.params.BitsPerSample {
			return nil, fmt.Errorf("video: effect %s has parameters %+v, want %+v", effectFiles[i], p, b.params)
		}
	}
	return &b, nil
}

// effectWindow returns how many audio samples the effect starting at
// frame start occupies, and how many later triggers it swallows. The
// effect runs until the next frame whose trigger either outranks it or
// arrives after minDuration frames.
func effectWindow(start int, sounds []int, samplesPerFrame, minDuration int) (numSamples, skip int) {
	next := start + 1
	numSamples = samplesPerFrame
	for next < len(sounds) &&
		(sounds[next] == noEffect ||
			(next-start < minDuration && priorityRank(sounds[next]) >= priorityRank(sounds[start]))) {
		if sounds[next] != noEffect {
			skip++
		}
		next++
		numSamples += samplesPerFrame
	}
	return numSamples, skip
}

// writeEffectsTrack renders the sound-effect track for one clip: each
// triggered effect plays truncated or silence-padded to its window so the
// track stays frame aligned with the video.
func (g *Generator) writeEffectsTrack(path string, rows []Row) error {
	w, err := audio.Create(path, g.effects.params)
	if err != nil {
		return err
	}

	sounds := make([]int, len(rows))
	for i, row := range rows {
		sounds[i] = pickEffect(row)
	}

	spf := g.samplesPerFrame()
	skip := 0
	if len(sounds) > 0 && sounds[0] == noEffect {
		pad, _ := effectWindow(0, sounds, spf, 0)
		if err := w.WriteFrames(audio.Silence(g.effects.params, pad)); err != nil {
			w.Close()
			return err
		}
	}
	for frame, sound := range sounds {
		if sound == noEffect {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		var numSamples int
		numSamples, skip = effectWindow(frame, sounds, spf, minEffectDurations[sound])

		r := g.effects.readers[sound]
		r.Rewind()
		if err := w.WriteFrames(r.ReadFrames(numSamples)); err != nil {
			w.Close()
			return err
		}
		if short := numSamples - r.Params().NumFrames; short > 0 {
			if err := w.WriteFrames(audio.Silence(g.effects.params, short)); err != nil {
				w.Close()
				return err
			}
		}
	}
	return w.Close()
}
