package protocol

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/danmuck/procreceive/internal/pktline"
)

const OIDHexLen = 40

// ReadCommands reads command frames up to the terminating flush. An empty
// batch is valid.
func ReadCommands(r io.Reader) ([]Command, error) {
	var cmds []Command
	for {
		f, err := pktline.ReadFrame(r)
		if err != nil {
			return nil, err
		}
		if f.Flush {
			return cmds, nil
		}
		cmd, err := ParseCommand(f.Text())
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
}

// ParseCommand parses "<old-oid> <new-oid> <ref-name>". Tokens after the
// ref name are ignored.
func ParseCommand(line string) (Command, error) {
	toks := asciiFields(line)
	switch {
	case len(toks) < 2:
		return Command{}, ErrExpectedOID
	case len(toks) < 3:
		return Command{}, ErrExpectedRef
	}

	cmd := Command{OldOID: toks[0], NewOID: toks[1], RefName: toks[2]}
	if !ValidOID(cmd.OldOID) {
		return Command{}, fmt.Errorf("%w: old-oid %q", ErrInvalidSHA, cmd.OldOID)
	}
	if !ValidOID(cmd.NewOID) {
		return Command{}, fmt.Errorf("%w: new-oid %q", ErrInvalidSHA, cmd.NewOID)
	}
	return cmd, nil
}

// ValidOID reports whether s is exactly 40 lowercase hex digits.
func ValidOID(s string) bool {
	if len(s) != OIDHexLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9') && !('a' <= c && c <= 'f') {
			return false
		}
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
