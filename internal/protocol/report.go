package protocol

import (
	"fmt"
	"io"

	"github.com/danmuck/procreceive/internal/pktline"
)

// Result is an applied command together with the ref it was diverted to.
type Result struct {
	Command        Command
	IntegrationRef string
}

// Lines returns the report frames for r, in wire order.
func (r Result) Lines() []string {
	return []string{
		"ok " + r.Command.RefName,
		"option refname " + r.IntegrationRef,
		"option old-oid " + r.Command.OldOID,
		"option new-oid " + r.Command.NewOID,
	}
}

// WriteReport writes the report frames of every result, a flush frame, and
// then flushes w if it buffers.
func WriteReport(w io.Writer, results []Result) error {
	for _, res := range results {
		for _, line := range res.Lines() {
			if err := pktline.WriteString(w, line); err != nil {
				return fmt.Errorf("protocol: write report for %s: %w", res.Command.RefName, err)
			}
		}
	}
	if err := pktline.WriteFlush(w); err != nil {
		return fmt.Errorf("protocol: write report: %w", err)
	}
	return flushStream(w)
}
