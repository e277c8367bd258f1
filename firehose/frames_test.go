package firehose

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(t *testing.T, header any, payload any) []byte {
	t.Helper()
	hb, err := cbor.Marshal(header)
	require.NoError(t, err)
	pb, err := cbor.Marshal(payload)
	require.NoError(t, err)
	return append(hb, pb...)
}

func TestParseFrameSplit(t *testing.T) {
	assert := assert.New(t)

	header := map[string]any{"op": 1, "t": "#commit"}
	payload := map[string]any{"seq": 42, "repo": "did:plc:abc"}

	hdr, rest, err := ParseFrame(frame(t, header, payload))
	require.NoError(t, err)
	assert.Equal(FrameMessage, hdr.Op)
	assert.Equal("#commit", hdr.MsgType)

	// the remainder must independently decode back to the second value
	var out map[string]any
	require.NoError(t, cbor.Unmarshal(rest, &out))
	assert.Equal(uint64(42), out["seq"])
	assert.Equal("did:plc:abc", out["repo"])
}

func TestParseFrameMalformed(t *testing.T) {
	assert := assert.New(t)

	payload := map[string]any{"seq": 1}

	// missing op
	_, _, err := ParseFrame(frame(t, map[string]any{"t": "#commit"}, payload))
	assert.ErrorIs(err, ErrMalformedFrame)

	// op of the wrong type
	_, _, err = ParseFrame(frame(t, map[string]any{"op": "1", "t": "#commit"}, payload))
	assert.ErrorIs(err, ErrMalformedFrame)

	// missing t on a normal message
	_, _, err = ParseFrame(frame(t, map[string]any{"op": 1}, payload))
	assert.ErrorIs(err, ErrMalformedFrame)

	// t of the wrong type
	_, _, err = ParseFrame(frame(t, map[string]any{"op": 1, "t": 7}, payload))
	assert.ErrorIs(err, ErrMalformedFrame)

	// not CBOR at all
	_, _, err = ParseFrame([]byte{0xff, 0xff, 0xff})
	assert.ErrorIs(err, ErrMalformedFrame)

	// single value, nothing trailing: no split exists
	hb, err := cbor.Marshal(map[string]any{"op": 1, "t": "#commit"})
	require.NoError(t, err)
	_, _, err = ParseFrame(hb)
	assert.ErrorIs(err, ErrNoPayload)
}

func TestParseFrameErrorOp(t *testing.T) {
	assert := assert.New(t)

	// error frames have no "t" and that must not count as malformed
	hdr, _, err := ParseFrame(frame(t, map[string]any{"op": -1}, map[string]any{"error": "FutureCursor"}))
	require.NoError(t, err)
	assert.Equal(FrameError, hdr.Op)
	assert.Empty(hdr.MsgType)
}
