package repo

import (
	"fmt"
	"io"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipld/go-car/v2"
)

// BlockMap holds the content blocks of one commit, addressable by the
// string form of their CID. Scoped to a single commit's processing.
//
// Block counts are single digits in practice, but commits can legally
// carry more, so lookups go through a map rather than a rescan.
type BlockMap struct {
	order []blocks.Block
	byCid map[string][]byte
}

// ReadBlockMap parses a CAR archive into an addressable block set.
//
// Reading is permissive: the CIDs recorded in the archive are trusted
// rather than re-hashed, trading verification for throughput the same
// way the rest of the firehose pipeline trusts the relay.
func ReadBlockMap(r io.Reader) (*BlockMap, error) {
	br, err := car.NewBlockReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading CAR header: %w", err)
	}

	bm := &BlockMap{
		byCid: make(map[string][]byte),
	}

	for {
		blk, err := br.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading CAR block: %w", err)
		}

		bm.order = append(bm.order, blk)
		bm.byCid[blk.Cid().String()] = blk.RawData()
	}

	return bm, nil
}

// Get resolves a block by the string form of its content-id.
func (bm *BlockMap) Get(cidStr string) ([]byte, bool) {
	b, ok := bm.byCid[cidStr]
	return b, ok
}

// Len reports the number of blocks in the archive.
func (bm *BlockMap) Len() int {
	return len(bm.order)
}

// Blocks returns the archive's blocks in their original order.
func (bm *BlockMap) Blocks() []blocks.Block {
	return bm.order
}
