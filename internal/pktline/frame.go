// Package pktline reads and writes git pkt-line frames.
//
// A frame is four lowercase hex digits holding the total frame length
// (header included) followed by the payload. The reserved length 0000 is
// the flush marker and carries no payload.
package pktline

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

const (
	HeaderLen = 4
	// MaxFrameLen is the largest length a 4-digit header can declare.
	MaxFrameLen   = 0xFFFF
	MaxPayloadLen = MaxFrameLen - HeaderLen
	FlushPkt      = "0000"
)

var (
	ErrMalformedLength = errors.New("pktline: length header is not hex")
	ErrLengthTooSmall  = errors.New("pktline: declared length smaller than header")
	ErrTruncated       = errors.New("pktline: truncated frame")
	ErrInvalidEncoding = errors.New("pktline: payload is not valid utf-8")
	ErrPayloadTooLarge = errors.New("pktline: payload too large")
)

// Frame is one pkt-line. A flush frame has Flush set and no payload.
type Frame struct {
	Flush   bool
	Payload []byte
}

// Data returns a data frame carrying p.
func Data(p []byte) Frame {
	return Frame{Payload: p}
}

// Text returns the payload as a string.
func (f Frame) Text() string {
	return string(f.Payload)
}

func (f Frame) String() string {
	if f.Flush {
		return "flush"
	}
	return fmt.Sprintf("data(%q)", f.Payload)
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Frame{}, readErr("header", err)
	}

	n, err := parseLength(head)
	if err != nil {
		return Frame{}, err
	}
	if n == 0 {
		return Frame{Flush: true}, nil
	}
	if n < HeaderLen {
		return Frame{}, fmt.Errorf("%w: %d", ErrLengthTooSmall, n)
	}

	payload := make([]byte, n-HeaderLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, readErr("payload", err)
	}
	if !utf8.Valid(payload) {
		return Frame{}, ErrInvalidEncoding
	}
	return Data(payload), nil
}

func parseLength(head [HeaderLen]byte) (int, error) {
	for _, c := range head {
		if !isHexDigit(c) {
			return 0, fmt.Errorf("%w: %q", ErrMalformedLength, head[:])
		}
	}
	n, err := strconv.ParseUint(string(head[:]), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedLength, head[:])
	}
	return int(n), nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func readErr(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: short %s", ErrTruncated, part)
	}
	return fmt.Errorf("pktline: read %s: %w", part, err)
}

// WriteFrame writes payload as a single data frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	if _, err := fmt.Fprintf(w, "%04x", len(payload)+HeaderLen); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// WriteString writes s as a single data frame.
func WriteString(w io.Writer, s string) error {
	return WriteFrame(w, []byte(s))
}

// WriteFlush writes the flush marker.
func WriteFlush(w io.Writer) error {
	_, err := io.WriteString(w, FlushPkt)
	return err
}
