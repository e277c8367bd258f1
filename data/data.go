// Package data decodes generic atproto DAG-CBOR into plain Go values.
//
// Firehose payloads (commit envelopes and the records inside their block
// archives) are all IPLD dag-cbor. Rather than carrying generated lexicon
// marshalers, this package decodes everything into map[string]any and lets
// callers pull out the fields they care about with the typed accessors in
// extract.go. CID links (CBOR tag 42) surface as cid.Cid values.
package data

import (
	"fmt"

	cbor "github.com/ipfs/go-ipld-cbor"
)

// UnmarshalCBOR parses a single dag-cbor object into generic form.
func UnmarshalCBOR(b []byte) (map[string]any, error) {
	var rawObj map[string]any
	if err := cbor.DecodeInto(b, &rawObj); err != nil {
		return nil, fmt.Errorf("decoding dag-cbor object: %w", err)
	}
	return rawObj, nil
}

// MarshalCBOR serializes generic data to dag-cbor bytes. cid.Cid values
// are written as tag 42 links. Mostly useful for constructing test
// fixtures and round-trips.
func MarshalCBOR(obj map[string]any) ([]byte, error) {
	return cbor.DumpObject(obj)
}
