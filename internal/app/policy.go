package app

import (
	"fmt"

	"github.com/dkeye/watchparty/internal/domain"
)

type BackpressureAction int

const (
	// DropFrame loses the message for that connection only.
	DropFrame BackpressureAction = iota
	// KickMember closes the slow connection; the transport then runs the
	// regular disconnect path.
	KickMember
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(sid domain.ConnID) BackpressureAction
}

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.ConnID) BackpressureAction { return KickMember }

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ConnID) BackpressureAction { return DropFrame }

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "kick":
		return KickPolicy{}, nil
	case "drop":
		return DropPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
