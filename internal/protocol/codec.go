package protocol

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/dkeye/watchparty/internal/domain"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownType  = errors.New("unknown message type")
	ErrInvalidField = errors.New("invalid field")
	ErrRateLimited  = errors.New("too many messages")
)

var inboundTypes = map[string]func() Inbound{
	TypeJoinRoom:           func() Inbound { return &JoinRoom{} },
	TypeLeaveRoom:          func() Inbound { return &LeaveRoom{} },
	TypeChatMessage:        func() Inbound { return &ChatMessage{} },
	TypeVideoPlay:          func() Inbound { return &VideoPlay{} },
	TypeVideoPause:         func() Inbound { return &VideoPause{} },
	TypeVideoSeek:          func() Inbound { return &VideoSeek{} },
	TypeVideoLoad:          func() Inbound { return &VideoLoad{} },
	TypeWebRTCOffer:        func() Inbound { return &WebRTCOffer{} },
	TypeWebRTCAnswer:       func() Inbound { return &WebRTCAnswer{} },
	TypeWebRTCICECandidate: func() Inbound { return &WebRTCICECandidate{} },
	TypePing:               func() Inbound { return &Ping{} },
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Decode parses one client frame into its variant and checks the variant's
// required fields. Nothing is returned unless every check passed.
func Decode(data []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	newMsg, ok := inboundTypes[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	msg := newMsg()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	if rs, ok := msg.(RoomScoped); ok {
		if err := rs.Room().Validate(); err != nil {
			return nil, err
		}
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidField, describe(err))
	}
	return msg, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be >= " + fe.Param()
	case "max":
		return fe.Field() + " is longer than " + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}

// Encode serializes one outbound message.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// ErrorFor maps a decode or handling error to the wire error sent back to
// the originating connection.
func ErrorFor(err error) *ErrorMessage {
	switch {
	case errors.Is(err, ErrRateLimited):
		return NewErrorMessage(ErrCodeRateLimited, err.Error())
	case errors.Is(err, domain.ErrInvalidRoomCode):
		return NewErrorMessage(ErrCodeInvalidRoomCode, err.Error())
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrUnknownType), errors.Is(err, ErrInvalidField),
		errors.Is(err, domain.ErrUsernameTooLong):
		return NewErrorMessage(ErrCodeBadRequest, err.Error())
	default:
		return NewErrorMessage(ErrCodeInternalError, "internal error")
	}
}
