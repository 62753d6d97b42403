package bridge

import (
	"testing"
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/require"
)

func TestMetadataCodec(t *testing.T) {
	md := arrow.NewMetadata([]string{"origin", "empty"}, []string{"engine", ""})

	buf := encodeMetadata(md)
	require.NotNil(t, buf)

	got, err := decodeMetadata(unsafe.Pointer(&buf[0]))
	require.NoError(t, err)
	require.Equal(t, md.Keys(), got.Keys())
	require.Equal(t, md.Values(), got.Values())
}

func TestMetadataEmpty(t *testing.T) {
	require.Nil(t, encodeMetadata(arrow.Metadata{}))

	got, err := decodeMetadata(nil)
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())
}
