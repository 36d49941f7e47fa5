package lnurl

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataEncode(t *testing.T) {
	meta := Metadata{
		{MetadataPlainText, "Support the show"},
		{MetadataIdentifier, "tips@example.com"},
	}

	encoded, err := meta.Encode()
	require.NoError(t, err)
	require.Equal(t,
		`[["text/plain","Support the show"],`+
			`["text/identifier","tips@example.com"]]`,
		encoded,
	)
}

func TestMetadataEntry(t *testing.T) {
	meta := Metadata{{MetadataPlainText, "hello"}}

	value, ok := meta.Entry(MetadataPlainText)
	require.True(t, ok)
	require.Equal(t, "hello", value)

	_, ok = meta.Entry(MetadataIdentifier)
	require.False(t, ok)
}

func TestHashDescription(t *testing.T) {
	meta := Metadata{{MetadataPlainText, "hello"}}
	encoded, err := meta.Encode()
	require.NoError(t, err)

	want := sha256.Sum256([]byte(encoded))
	require.Equal(t, want, HashDescription(encoded))
}
