package events

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/app"
)

// LogSink writes room events to the process log.
type LogSink struct{}

func (LogSink) Publish(ev app.RoomEvent) {
	evt := log.Info().
		Str("module", "events").
		Str("type", string(ev.Type)).
		Str("room", string(ev.Room)).
		Int("user_count", ev.UserCount)
	if ev.SID != "" {
		evt = evt.Str("sid", string(ev.SID))
	}
	if ev.Playback != nil {
		evt = evt.Str("status", ev.Playback.Status().String()).
			Str("url", ev.Playback.URL).Float64("time", ev.Playback.Time).Bool("playing", ev.Playback.Playing)
	}
	evt.Msg("room event")
}
