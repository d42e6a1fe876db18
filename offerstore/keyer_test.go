package offerstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Keyer_Offer(t *testing.T) {
	key := Keys.offer("A:I", "B:I", 258)

	expectedKey := []byte{tableOffer}
	expectedKey = append(expectedKey, []byte("A:I")...)
	expectedKey = append(expectedKey, separator)
	expectedKey = append(expectedKey, []byte("B:I")...)
	expectedKey = append(expectedKey, separator)
	expectedKey = append(expectedKey, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02}...)
	require.Equal(t, expectedKey, key)

	assert.Equal(t, uint64(258), Keys.unpackOfferID(key))
}

func Test_Keyer_OfferIndex(t *testing.T) {
	require.Equal(t, []byte{tableOfferIndex, 0, 0, 0, 0, 0, 0, 0, 0x07}, Keys.offerIndex(7))
}

func Test_Keyer_Cursor(t *testing.T) {
	require.Equal(t, []byte{tableCursor}, Keys.cursor())
}
