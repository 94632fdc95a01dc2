package replay

// Monster is one enemy's state in a frame. Theme indexes into the game's
// flattened monster name list. Time is copied from the frame's state_time at
// parse time so the animation phase survives serialization.
type Monster struct {
	ID int     `json:"m_id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	Theme     int  `json:"theme"`
	IsFlying  bool `json:"is_flying"`
	IsWalking bool `json:"is_walking"`
	IsJumping bool `json:"is_jumping"`
	IsDead    bool `json:"is_dead"`

	Time          int `json:"time"`
	AnimFreq      int `json:"anim_freq"`
	DyingFrameCnt int `json:"monster_dying_frame_cnt"`

	Walk1Mode bool `json:"walk1_mode"`
}

// Derive computes the walk1/move sprite alternation. Jumping monsters switch
// sprites on vertical motion; everything else alternates on the modular
// animation counter.
func (m *Monster) Derive() {
	if m.AnimFreq < 1 {
		m.AnimFreq = 1
	}
	if m.IsJumping {
		m.Walk1Mode = m.VY == 0
		return
	}
	m.Walk1Mode = (m.Time/m.AnimFreq)%2 == 0
}
