package protocol

import (
	"io"
	"strings"

	"github.com/danmuck/procreceive/internal/pktline"
)

// ReadOptions reads push-option frames up to the terminating flush.
// Frames without '=' are skipped, not rejected.
func ReadOptions(r io.Reader) (Options, error) {
	opts := make(Options)
	for {
		f, err := pktline.ReadFrame(r)
		if err != nil {
			return nil, err
		}
		if f.Flush {
			return opts, nil
		}
		key, value, ok := strings.Cut(f.Text(), "=")
		if !ok {
			continue
		}
		opts[key] = value
	}
}
