package replay

// Agent pose names, matching the engine's sprite sheet suffixes.
const (
	PoseHit    = "hit"
	PoseClimb1 = "climb1"
	PoseClimb2 = "climb2"
	PoseJump   = "jump"
	PoseDuck   = "duck"
	PoseStand  = "stand"
	PoseWalk1  = "walk1"
	PoseWalk2  = "walk2"
)

// agentAnimFreq is the walk/climb sprite alternation period in ticks,
// hard-coded in the engine.
const agentAnimFreq = 5

// Agent is the player state of one frame. The fields up to PowerUpMode come
// straight from the monitor log; the rest are derived deterministically from
// them and recomputed on load.
type Agent struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	TimeAlive int     `json:"time_alive"`
	Ladder    bool    `json:"ladder"`
	Spring    float64 `json:"spring"`

	IsKilled           bool `json:"is_killed"`
	KilledAnimFrameCnt int  `json:"killed_animation_frame_cnt"`
	FinishedFrameCnt   int  `json:"finished_level_frame_cnt"`
	KilledMonster      bool `json:"killed_monster"`
	BumpedHead         bool `json:"bumped_head"`
	CollectedCoin      bool `json:"collected_coin"`
	CollectedGem       bool `json:"collected_gem"`
	PowerUpMode        bool `json:"power_up_mode"`

	AnimFreq      int    `json:"anim_freq"`
	IsFacingRight bool   `json:"is_facing_right"`
	Walk1Mode     bool   `json:"walk1_mode"`
	Pose          string `json:"pose"`
}

// Derive computes the animation state from the recorded fields: facing from
// the velocity sign, the walk1/walk2 alternation from the elapsed-time
// counter, and the sprite pose.
func (a *Agent) Derive() {
	a.AnimFreq = agentAnimFreq
	a.IsFacingRight = a.VX >= 0
	a.Walk1Mode = (a.TimeAlive/a.AnimFreq)%2 == 0
	a.Pose = a.pose()
}

// pose resolves the sprite pose. Order matters: death wins over everything,
// climbing over airborne, airborne over ducking, ducking over walking.
func (a *Agent) pose() string {
	switch {
	case a.IsKilled:
		return PoseHit
	case a.Ladder:
		if a.Walk1Mode {
			return PoseClimb1
		}
		return PoseClimb2
	case a.VY != 0:
		return PoseJump
	case a.Spring != 0:
		return PoseDuck
	case a.VX == 0:
		return PoseStand
	case a.Walk1Mode:
		return PoseWalk1
	default:
		return PoseWalk2
	}
}
