// Package repo decodes #commit payloads: the typed commit record itself
// and the CAR-bundled content blocks it carries.
package repo

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/basho-social/basho/data"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RepoOp is one repository mutation within a commit.
type RepoOp struct {
	Action string
	Path   string
	Cid    *cid.Cid
}

// Collection returns the record-type namespace portion of the op path
// (everything before the first slash).
func (op *RepoOp) Collection() string {
	return strings.SplitN(op.Path, "/", 2)[0]
}

// Rkey returns the record-key portion of the op path, or "" when the
// path has no slash.
func (op *RepoOp) Rkey() string {
	parts := strings.SplitN(op.Path, "/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Commit is the decoded payload of a #commit message. Immutable once
// decoded; owned by the task processing its message.
type Commit struct {
	Seq    int64
	Repo   string
	Rev    string
	Time   string
	TooBig bool
	Rebase bool
	Ops    []RepoOp
	Blocks []byte
}

// DecodeCommit parses a #commit payload. The ops list and blocks blob
// are required; ops must each carry a string action and path. Fields
// this consumer does not use are ignored.
func DecodeCommit(b []byte) (*Commit, error) {
	obj, err := data.UnmarshalCBOR(b)
	if err != nil {
		return nil, fmt.Errorf("decoding commit payload: %w", err)
	}

	var c Commit
	if c.Seq, err = data.Int(obj, "seq"); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if c.Repo, err = data.String(obj, "repo"); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	// informational fields; tolerate absence on the wire
	c.Rev, _ = data.String(obj, "rev")
	c.Time, _ = data.String(obj, "time")
	if c.TooBig, err = data.Bool(obj, "tooBig"); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if c.Rebase, err = data.Bool(obj, "rebase"); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if c.Blocks, err = data.Bytes(obj, "blocks"); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	rawOps, err := data.List(obj, "ops")
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	c.Ops = make([]RepoOp, 0, len(rawOps))
	for i, v := range rawOps {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("commit op %d is not an object (%T)", i, v)
		}
		var op RepoOp
		if op.Action, err = data.String(m, "action"); err != nil {
			return nil, fmt.Errorf("commit op %d: %w", i, err)
		}
		if op.Path, err = data.String(m, "path"); err != nil {
			return nil, fmt.Errorf("commit op %d: %w", i, err)
		}
		if op.Cid, err = data.Link(m, "cid"); err != nil {
			return nil, fmt.Errorf("commit op %d: %w", i, err)
		}
		c.Ops = append(c.Ops, op)
	}

	return &c, nil
}
