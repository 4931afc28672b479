package domain

// PlaybackStatus is derived from PlaybackState, it is never stored.
type PlaybackStatus int

const (
	PlaybackEmpty PlaybackStatus = iota
	PlaybackPaused
	PlaybackPlaying
)

func (s PlaybackStatus) String() string {
	switch s {
	case PlaybackPaused:
		return "paused"
	case PlaybackPlaying:
		return "playing"
	default:
		return "empty"
	}
}

// PlaybackState is the shared video state of one room.
// Time is the playhead in seconds and is never negative.
type PlaybackState struct {
	URL     string  `json:"url"`
	Time    float64 `json:"time"`
	Playing bool    `json:"playing"`
}

func (p PlaybackState) Status() PlaybackStatus {
	switch {
	case p.URL == "":
		return PlaybackEmpty
	case p.Playing:
		return PlaybackPlaying
	default:
		return PlaybackPaused
	}
}

// Load replaces the video and rewinds it, whatever the prior state was.
func (p *PlaybackState) Load(url string) {
	p.URL = url
	p.Time = 0
	p.Playing = false
}

func (p *PlaybackState) Play(at float64) {
	p.Playing = true
	p.Time = clampTime(at)
}

func (p *PlaybackState) Pause(at float64) {
	p.Playing = false
	p.Time = clampTime(at)
}

// Seek moves the playhead only; play/pause is left as is.
func (p *PlaybackState) Seek(at float64) {
	p.Time = clampTime(at)
}

func clampTime(t float64) float64 {
	if t < 0 {
		return 0
	}
	return t
}
