package app

import (
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

// Relay forwards peer negotiation payloads to one named connection. It has
// no notion of rooms and never looks inside the payload: whether target is a
// sensible peer for sender is the caller's concern.
type Relay struct {
	router *Router
}

func NewRelay(router *Router) *Relay {
	return &Relay{router: router}
}

// Forward reports whether the payload was queued for target. An unknown
// target is not an error.
func (r *Relay) Forward(kind string, sender, target domain.ConnID, payload json.RawMessage) bool {
	msg := &protocol.RelayedSignal{Type: kind, SenderSID: sender}
	switch kind {
	case protocol.TypeWebRTCOffer:
		msg.Offer = payload
	case protocol.TypeWebRTCAnswer:
		msg.Answer = payload
	case protocol.TypeWebRTCICECandidate:
		msg.Candidate = payload
	default:
		log.Warn().Str("module", "app.relay").Str("kind", kind).Msg("not a relayable signal")
		return false
	}

	ok := r.router.SendTo(target, msg)
	log.Debug().
		Str("module", "app.relay").
		Str("kind", kind).
		Str("sender", string(sender)).
		Str("target", string(target)).
		Bool("delivered", ok).
		Msg("signal relayed")
	return ok
}
