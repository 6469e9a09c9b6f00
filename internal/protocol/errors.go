package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrProtocol            = errors.New("protocol: unexpected negotiation key")
	ErrUnsupportedVersion  = errors.New("protocol: unsupported protocol version")
	ErrPushOptionsRequired = errors.New("protocol: peer did not offer push-options")
	ErrExpectedFlush       = errors.New("protocol: expected flush-pkt")
	ErrExpectedOID         = errors.New("protocol: expected object id")
	ErrExpectedRef         = errors.New("protocol: expected ref name")
	ErrInvalidSHA          = errors.New("protocol: invalid object id")
)

// UnsupportedVersionError reports a version frame this side cannot speak.
// HasVersion is false when the frame carried no version number at all.
type UnsupportedVersionError struct {
	Version    string
	HasVersion bool
}

func (e *UnsupportedVersionError) Error() string {
	if !e.HasVersion {
		return "protocol: unsupported protocol version: missing version number"
	}
	return fmt.Sprintf("protocol: unsupported protocol version %q", e.Version)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}
