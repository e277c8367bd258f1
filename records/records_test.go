package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basho-social/basho/data"
)

func enc(t *testing.T, obj map[string]any) []byte {
	t.Helper()
	b, err := data.MarshalCBOR(obj)
	require.NoError(t, err)
	return b
}

func TestDecodePost(t *testing.T) {
	assert := assert.New(t)

	b := enc(t, map[string]any{
		"$type":     CollectionPost,
		"text":      "An old silent pond",
		"createdAt": "2024-01-02T03:04:05.006Z",
		"langs":     []any{"en", "ja"},
	})

	rec, err := Decode(CollectionPost, b)
	require.NoError(t, err)

	post, ok := rec.(*Post)
	require.True(t, ok)
	assert.Equal("An old silent pond", post.Text)
	assert.Equal("An old silent pond", post.Summary())
	assert.Equal([]string{"en", "ja"}, post.Langs)
	assert.Equal("2024-01-02T03:04:05.006Z", post.CreatedAt)
}

func TestDecodeLikeAndRepost(t *testing.T) {
	assert := assert.New(t)

	obj := map[string]any{
		"subject": map[string]any{
			"uri": "at://did:plc:abc/app.bsky.feed.post/3kxyz",
			"cid": "bafyreidfayvfuwqa7qlnopdjiqrxzs6blmoeu4rujcjtnci5beludirz2a",
		},
		"createdAt": "2024-01-02T03:04:05.006Z",
	}

	rec, err := Decode(CollectionLike, enc(t, obj))
	require.NoError(t, err)
	like, ok := rec.(*Like)
	require.True(t, ok)
	assert.Equal("at://did:plc:abc/app.bsky.feed.post/3kxyz", like.Summary())
	assert.NotEmpty(like.Subject.Cid)

	rec, err = Decode(CollectionRepost, enc(t, obj))
	require.NoError(t, err)
	repost, ok := rec.(*Repost)
	require.True(t, ok)
	assert.Equal("at://did:plc:abc/app.bsky.feed.post/3kxyz", repost.Summary())
}

func TestDecodeFollow(t *testing.T) {
	assert := assert.New(t)

	rec, err := Decode(CollectionFollow, enc(t, map[string]any{
		"subject":   "did:plc:ewvi7nxzyoun6zhxrhs64oiz",
		"createdAt": "2024-01-02T03:04:05.006Z",
	}))
	require.NoError(t, err)

	follow, ok := rec.(*Follow)
	require.True(t, ok)
	assert.Equal("did:plc:ewvi7nxzyoun6zhxrhs64oiz", follow.Summary())
}

func TestDecodeUnknownCollection(t *testing.T) {
	b := enc(t, map[string]any{"anything": "at all"})

	_, err := Decode("app.bsky.unknown.thing", b)
	assert.ErrorIs(t, err, ErrUnknownCollection)

	assert.False(t, Known("app.bsky.unknown.thing"))
	assert.True(t, Known(CollectionPost))
	assert.True(t, Known(CollectionLike))
	assert.True(t, Known(CollectionRepost))
	assert.True(t, Known(CollectionFollow))
}

func TestDecodeMalformedRecord(t *testing.T) {
	assert := assert.New(t)

	// post without text
	_, err := Decode(CollectionPost, enc(t, map[string]any{"createdAt": "x"}))
	assert.Error(err)

	// like without subject uri
	_, err = Decode(CollectionLike, enc(t, map[string]any{"subject": map[string]any{"cid": "x"}}))
	assert.Error(err)

	// follow with non-string subject
	_, err = Decode(CollectionFollow, enc(t, map[string]any{"subject": map[string]any{"uri": "x"}}))
	assert.Error(err)

	// not CBOR
	_, err = Decode(CollectionPost, []byte{0xff})
	assert.Error(err)
}
