package state

import "time"

// PlaybackState manages plan playback timing. Time is measured in joint
// steps: t=1.5 is halfway through the second step.
type PlaybackState struct {
	CurrentTime float64 // current playback time in steps
	MaxTime     float64 // plan length
	Speed       float64 // steps per second
	Playing     bool
	lastUpdate  time.Time
	now         func() time.Time
}

// NewPlaybackState creates a paused playback over steps joint steps.
func NewPlaybackState(steps int) *PlaybackState {
	return &PlaybackState{
		MaxTime: float64(steps),
		Speed:   2,
		now:     time.Now,
	}
}

// TogglePlay toggles playback on/off.
func (p *PlaybackState) TogglePlay() {
	if p.Playing {
		p.Pause()
		return
	}
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = 0
	}
	p.Play()
}

// Play starts playback.
func (p *PlaybackState) Play() {
	p.Playing = true
	p.lastUpdate = p.now()
}

// Pause stops playback.
func (p *PlaybackState) Pause() {
	p.Playing = false
}

// Reset rewinds to step 0.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves playback by the wall time elapsed since the last call.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}

	now := p.now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	p.lastUpdate = now

	p.CurrentTime += elapsed * p.Speed
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime sets the current playback time, clamped to the plan.
func (p *PlaybackState) SetTime(t float64) {
	p.CurrentTime = max(0, min(t, p.MaxTime))
}

// StepForward pauses and jumps to the next whole step.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(float64(p.Step()) + 1)
}

// StepBack pauses and jumps to the previous whole step.
func (p *PlaybackState) StepBack() {
	p.Pause()
	t := float64(p.Step())
	if t == p.CurrentTime {
		t--
	}
	p.SetTime(t)
}

// SetSpeed sets the playback speed, clamped to [0.25, 20] steps/s.
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = max(0.25, min(speed, 20))
}

// Step returns the last whole step reached.
func (p *PlaybackState) Step() int {
	return int(p.CurrentTime)
}

// Progress returns current progress as 0-1.
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}

// SetLength replaces the plan length after a new solve and rewinds.
func (p *PlaybackState) SetLength(steps int) {
	p.MaxTime = float64(steps)
	p.Reset()
}
