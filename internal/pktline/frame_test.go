package pktline

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	payloads := []string{
		"",
		"a",
		"ok refs/heads/main",
		"version=1\x00push-options\n",
		strings.Repeat("x", MaxPayloadLen),
	}
	for _, p := range payloads {
		var buf bytes.Buffer
		if err := WriteString(&buf, p); err != nil {
			t.Fatalf("write frame (len=%d): %v", len(p), err)
		}
		f, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("read frame (len=%d): %v", len(p), err)
		}
		if f.Flush {
			t.Fatalf("unexpected flush for payload len=%d", len(p))
		}
		if f.Text() != p {
			t.Fatalf("payload mismatch for len=%d", len(p))
		}
		if buf.Len() != 0 {
			t.Fatalf("unread bytes left: %d", buf.Len())
		}
	}
}

func TestWriteFrameVersionAdvertisement(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "version=1\x00push-options\n"); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	want := "001bversion=1\x00push-options\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
	// 23 payload bytes plus the 4-byte header.
	if buf.Len() != 27 {
		t.Fatalf("expected 27 bytes, got %d", buf.Len())
	}
}

func TestWriteFlush(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFlush(&buf); err != nil {
		t.Fatalf("write flush: %v", err)
	}
	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read flush: %v", err)
	}
	if !f.Flush || len(f.Payload) != 0 {
		t.Fatalf("expected flush, got %v", f)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFrame(&buf, make([]byte, MaxPayloadLen+1))
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("oversized frame wrote %d bytes", buf.Len())
	}
}

func TestReadFrameMalformedLength(t *testing.T) {
	for _, in := range []string{"zzzz", "00g1", "-001", "+0ff", " 012"} {
		_, err := ReadFrame(strings.NewReader(in + "payload"))
		if !errors.Is(err, ErrMalformedLength) {
			t.Fatalf("%q: expected ErrMalformedLength, got %v", in, err)
		}
	}
}

func TestReadFrameAcceptsUppercaseLength(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("000Ahello!"))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Flush || f.Text() != "hello!" {
		t.Fatalf("unexpected frame: %+v", f)
	}

	var buf bytes.Buffer
	if err := WriteString(&buf, strings.Repeat("x", 6)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "000a") {
		t.Fatalf("expected lowercase header, got %q", buf.String()[:4])
	}
}

func TestReadFrameLengthBelowHeader(t *testing.T) {
	for _, in := range []string{"0001", "0002", "0003"} {
		_, err := ReadFrame(strings.NewReader(in + "abc"))
		if !errors.Is(err, ErrLengthTooSmall) {
			t.Fatalf("%q: expected ErrLengthTooSmall, got %v", in, err)
		}
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	f, err := ReadFrame(strings.NewReader("0004"))
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if f.Flush || len(f.Payload) != 0 {
		t.Fatalf("expected empty data frame, got %v", f)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	cases := []string{
		"",
		"00",
		"000aabc",
	}
	for _, in := range cases {
		_, err := ReadFrame(strings.NewReader(in))
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("%q: expected ErrTruncated, got %v", in, err)
		}
	}
}

func TestReadFrameInvalidUTF8(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{'0', '0', '0', '6', 0xff, 0xfe}))
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestReadFrameSequence(t *testing.T) {
	r := strings.NewReader("0009hello0000000aworld!")
	first, err := ReadFrame(r)
	if err != nil || first.Text() != "hello" {
		t.Fatalf("first frame: %v %v", first, err)
	}
	second, err := ReadFrame(r)
	if err != nil || !second.Flush {
		t.Fatalf("second frame: %v %v", second, err)
	}
	third, err := ReadFrame(r)
	if err != nil || third.Text() != "world!" {
		t.Fatalf("third frame: %v %v", third, err)
	}
}
