package firehose

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/basho-social/basho/data"
)

// Subscription messages are two back-to-back CBOR values with no length
// prefix between them: a small header map, then the event payload. The
// split is recovered with a decode-with-remainder on the first value
// rather than by probing decoder failure positions.

const (
	// FrameMessage is a normal event; the payload kind is named by the
	// header's "t" field.
	FrameMessage = int64(1)
	// FrameError is a server-signaled error; the message carries no
	// event payload worth decoding.
	FrameError = int64(-1)
)

// TypeCommit is the only payload kind this service consumes.
const TypeCommit = "#commit"

var (
	ErrMalformedFrame = errors.New("malformed stream frame")
	// ErrNoPayload means the buffer held a single CBOR value with no
	// trailing payload, so no header/payload split exists.
	ErrNoPayload = errors.New("stream frame has no payload after header")
)

// EventHeader is the decoded metadata frame of one stream message.
type EventHeader struct {
	Op      int64
	MsgType string
}

var decMode cbor.DecMode

func init() {
	dm, err := cbor.DecOptions{
		// any-typed targets decode maps as map[string]any; the header
		// only ever has string keys
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		// fold unsigned and negative integers into int64 so the "op"
		// check is a single type assertion
		IntDec: cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		panic("firehose: CBOR decoder initialization failed: " + err.Error())
	}
	decMode = dm
}

// ParseFrame splits one binary stream message into its header and
// payload, validating the header fields. The returned payload slices the
// input; it is only valid as long as buf is.
//
// "op" must be present and an integer. For op=-1 the "t" field is not
// required (error frames do not carry one). For any other op, "t" must
// be present and a string. A buffer whose first value consumes every
// byte yields ErrNoPayload.
func ParseFrame(buf []byte) (*EventHeader, []byte, error) {
	var raw map[string]any
	payload, err := decMode.UnmarshalFirst(buf, &raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decoding header: %v", ErrMalformedFrame, err)
	}

	var hdr EventHeader
	hdr.Op, err = data.Int(raw, "op")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	if hdr.Op == FrameError {
		return &hdr, payload, nil
	}

	hdr.MsgType, err = data.String(raw, "t")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	if len(payload) == 0 {
		return nil, nil, ErrNoPayload
	}

	return &hdr, payload, nil
}
