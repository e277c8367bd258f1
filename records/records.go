// Package records decodes content blocks into the typed record variants
// this service acts on. Only the fields the pipeline consumes are
// extracted; everything else in a record is ignored.
package records

import (
	"errors"
	"fmt"

	"github.com/basho-social/basho/data"
)

const (
	CollectionPost   = "app.bsky.feed.post"
	CollectionLike   = "app.bsky.feed.like"
	CollectionRepost = "app.bsky.feed.repost"
	CollectionFollow = "app.bsky.graph.follow"
)

// ErrUnknownCollection marks a collection NSID outside the set this
// service decodes.
var ErrUnknownCollection = errors.New("unknown collection")

// Known reports whether the collection NSID has a record variant here.
func Known(collection string) bool {
	switch collection {
	case CollectionPost, CollectionLike, CollectionRepost, CollectionFollow:
		return true
	}
	return false
}

// Record is a typed decoding of one content block. A Record is only
// meaningful alongside the op that produced it and does not outlive
// per-operation processing.
type Record interface {
	// Summary is the variant-specific fragment of the per-operation log
	// line: post text, like/repost subject URI, follow subject.
	Summary() string
}

// Post is an app.bsky.feed.post record.
type Post struct {
	Text      string
	CreatedAt string
	Langs     []string
}

func (p *Post) Summary() string { return p.Text }

// StrongRef is a com.atproto.repo.strongRef: a URI plus the CID string
// of the specific record version.
type StrongRef struct {
	Uri string
	Cid string
}

// Like is an app.bsky.feed.like record.
type Like struct {
	Subject   StrongRef
	CreatedAt string
}

func (l *Like) Summary() string { return l.Subject.Uri }

// Repost is an app.bsky.feed.repost record.
type Repost struct {
	Subject   StrongRef
	CreatedAt string
}

func (r *Repost) Summary() string { return r.Subject.Uri }

// Follow is an app.bsky.graph.follow record; the subject is the
// followed account's DID.
type Follow struct {
	Subject   string
	CreatedAt string
}

func (f *Follow) Summary() string { return f.Subject }

// Decode parses a content block as the record variant implied by the
// collection NSID. Returns ErrUnknownCollection for NSIDs outside the
// known set.
func Decode(collection string, b []byte) (Record, error) {
	obj, err := data.UnmarshalCBOR(b)
	if err != nil {
		return nil, fmt.Errorf("decoding %s record: %w", collection, err)
	}

	switch collection {
	case CollectionPost:
		return decodePost(obj)
	case CollectionLike:
		ref, createdAt, err := decodeSubjectRef(obj)
		if err != nil {
			return nil, fmt.Errorf("like record: %w", err)
		}
		return &Like{Subject: *ref, CreatedAt: createdAt}, nil
	case CollectionRepost:
		ref, createdAt, err := decodeSubjectRef(obj)
		if err != nil {
			return nil, fmt.Errorf("repost record: %w", err)
		}
		return &Repost{Subject: *ref, CreatedAt: createdAt}, nil
	case CollectionFollow:
		return decodeFollow(obj)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
}

func decodePost(obj map[string]any) (*Post, error) {
	text, err := data.String(obj, "text")
	if err != nil {
		return nil, fmt.Errorf("post record: %w", err)
	}
	p := &Post{
		Text:  text,
		Langs: data.Strings(obj, "langs"),
	}
	p.CreatedAt, _ = data.String(obj, "createdAt")
	return p, nil
}

func decodeSubjectRef(obj map[string]any) (*StrongRef, string, error) {
	subj, err := data.Object(obj, "subject")
	if err != nil {
		return nil, "", err
	}
	uri, err := data.String(subj, "uri")
	if err != nil {
		return nil, "", err
	}
	var ref StrongRef
	ref.Uri = uri
	ref.Cid, _ = data.String(subj, "cid")
	createdAt, _ := data.String(obj, "createdAt")
	return &ref, createdAt, nil
}

func decodeFollow(obj map[string]any) (*Follow, error) {
	subject, err := data.String(obj, "subject")
	if err != nil {
		return nil, fmt.Errorf("follow record: %w", err)
	}
	f := &Follow{Subject: subject}
	f.CreatedAt, _ = data.String(obj, "createdAt")
	return f, nil
}
