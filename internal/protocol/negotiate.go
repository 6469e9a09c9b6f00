package protocol

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/procreceive/internal/pktline"
)

const (
	Version        = "1"
	CapPushOptions = "push-options"
)

// Advertisement is the version frame this side always answers with.
const Advertisement = "version=" + Version + "\x00" + CapPushOptions + "\n"

// Negotiate consumes the peer's version frame and the flush that follows
// it, then answers with Advertisement and a flush. The peer's capabilities
// are returned for diagnostics; only push-options is required.
func Negotiate(r io.Reader, w io.Writer) (CapList, error) {
	caps, err := readVersion(r)
	if err != nil {
		return nil, err
	}
	if err := expectFlush(r); err != nil {
		return nil, err
	}
	if err := pktline.WriteString(w, Advertisement); err != nil {
		return nil, fmt.Errorf("protocol: write version: %w", err)
	}
	if err := pktline.WriteFlush(w); err != nil {
		return nil, fmt.Errorf("protocol: write version: %w", err)
	}
	if err := flushStream(w); err != nil {
		return nil, err
	}
	return caps, nil
}

func readVersion(r io.Reader) (CapList, error) {
	f, err := pktline.ReadFrame(r)
	if err != nil {
		return nil, err
	}
	if f.Flush {
		return nil, fmt.Errorf("%w: got flush-pkt", ErrProtocol)
	}

	key, rest, _ := strings.Cut(f.Text(), "=")
	if key != "version" {
		return nil, fmt.Errorf("%w: %q", ErrProtocol, key)
	}
	num, capText, ok := strings.Cut(rest, "\x00")
	if !ok {
		return nil, &UnsupportedVersionError{}
	}
	if num != Version {
		return nil, &UnsupportedVersionError{Version: num, HasVersion: true}
	}

	caps := ParseCapList(capText)
	if !caps.Has(CapPushOptions) {
		return nil, ErrPushOptionsRequired
	}
	return caps, nil
}

func expectFlush(r io.Reader) error {
	f, err := pktline.ReadFrame(r)
	if err != nil {
		return err
	}
	if !f.Flush {
		return ErrExpectedFlush
	}
	return nil
}

type streamFlusher interface {
	Flush() error
}

func flushStream(w io.Writer) error {
	if fl, ok := w.(streamFlusher); ok {
		if err := fl.Flush(); err != nil {
			return fmt.Errorf("protocol: flush output: %w", err)
		}
	}
	return nil
}
