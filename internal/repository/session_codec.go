package repository

import (
	"fmt"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/fxamacker/cbor/v2"

	"github.com/spec-kit/enrollment-service/internal/domain"
)

// SessionCodec turns a session into the blob kept by a session store and back.
type SessionCodec interface {
	Name() string
	Encode(s *domain.Session) ([]byte, error)
	Decode(data []byte) (*domain.Session, error)
}

// NewSessionCodec returns the codec registered under name ("json" or "cbor").
func NewSessionCodec(name string) (SessionCodec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "cbor":
		return newCBORCodec()
	default:
		return nil, fmt.Errorf("unknown session codec %q", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(s *domain.Session) ([]byte, error) {
	return sonic.Marshal(s)
}

func (jsonCodec) Decode(data []byte) (*domain.Session, error) {
	var s domain.Session
	if err := sonic.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	normalizeSession(&s)
	return &s, nil
}

// cborCodec uses deterministic encoding with nanosecond RFC 3339 timestamps so decoded
// sessions compare equal to the originals.
type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORCodec() (SessionCodec, error) {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	enc, err := encOptions.EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	return cborCodec{enc: enc, dec: dec}, nil
}

func (cborCodec) Name() string { return "cbor" }

func (c cborCodec) Encode(s *domain.Session) ([]byte, error) {
	return c.enc.Marshal(s)
}

func (c cborCodec) Decode(data []byte) (*domain.Session, error) {
	var s domain.Session
	if err := c.dec.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	normalizeSession(&s)
	return &s, nil
}

func normalizeSession(s *domain.Session) {
	if s.CollectedData == nil {
		s.CollectedData = map[string]string{}
	}
	if s.RoleClarification == nil {
		s.RoleClarification = map[domain.RoleField]string{}
	}
	if s.Messages == nil {
		s.Messages = []domain.Message{}
	}
	if s.CurrentStep == "" {
		s.CurrentStep = domain.StepStart
	}
}
