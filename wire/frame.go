/*
File Name:  frame.go
Copyright:  2021 Peernet s.r.o.
Author:     Peter Kleissner

Length-delimited framing for Request/Response messages sent over a libp2p
stream, mirroring the teacher's fixed-header-then-payload convention in its
own packet encoding but using the libp2p ecosystem's varint-length framer
instead of a bespoke header struct.
*/

package wire

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/libp2p/go-msgio"
)

// maxFrameSize bounds a single Request/Response frame. Both message types
// are small (a peer ID and a handful of multiaddrs), so this is generous
// while still rejecting a malicious or corrupted oversized length prefix.
const maxFrameSize = 1 << 20 // 1 MiB

// WriteRequest CBOR-encodes req and writes it to w as a single
// length-prefixed frame.
func WriteRequest(w msgio.Writer, req Request) error {
	payload, err := req.MarshalCBOR()
	if err != nil {
		return fmt.Errorf("wire: encoding request: %w", err)
	}
	return w.WriteMsg(payload)
}

// ReadRequest reads one length-prefixed frame from r and decodes it as a
// Request.
func ReadRequest(r msgio.Reader) (Request, error) {
	var req Request
	payload, err := r.ReadMsg()
	if err != nil {
		return req, fmt.Errorf("wire: reading request frame: %w", err)
	}
	defer r.ReleaseMsg(payload)

	if err := cbor.Unmarshal(payload, &req); err != nil {
		return req, fmt.Errorf("wire: decoding request: %w", err)
	}
	return req, nil
}

// WriteResponse CBOR-encodes resp and writes it to w as a single
// length-prefixed frame.
func WriteResponse(w msgio.Writer, resp Response) error {
	payload, err := resp.MarshalCBOR()
	if err != nil {
		return fmt.Errorf("wire: encoding response: %w", err)
	}
	return w.WriteMsg(payload)
}

// ReadResponse reads one length-prefixed frame from r and decodes it as a
// Response.
func ReadResponse(r msgio.Reader) (Response, error) {
	var resp Response
	payload, err := r.ReadMsg()
	if err != nil {
		return resp, fmt.Errorf("wire: reading response frame: %w", err)
	}
	defer r.ReleaseMsg(payload)

	if err := resp.UnmarshalCBOR(payload); err != nil {
		return resp, fmt.Errorf("wire: decoding response: %w", err)
	}
	return resp, nil
}

// NewReader wraps an io.Reader (typically a libp2p network.Stream) with
// length-delimited message framing, capped at maxFrameSize per message.
func NewReader(r io.Reader) msgio.ReadCloser {
	return msgio.NewVarintReaderSize(r, maxFrameSize)
}

// NewWriter wraps an io.Writer (typically a libp2p network.Stream) with
// length-delimited message framing.
func NewWriter(w io.Writer) msgio.WriteCloser {
	return msgio.NewVarintWriter(w)
}
