package offerstore

import (
	"encoding/binary"

	"github.com/streamingfast/dexpath/asset"
)

const (
	tableOffer      = 0x00
	tableCursor     = 0x01
	tableOfferIndex = 0x02
)

const separator = 0x00

var Keys keyer

type keyer struct{}

// pairPrefix is `table | selling | 0x00 | buying | 0x00`, asset identifiers
// never contain a zero byte.
func (keyer) pairPrefix(selling, buying asset.ID) (out []byte) {
	out = make([]byte, 0, 1+len(selling)+1+len(buying)+1)
	out = append(out, tableOffer)
	out = append(out, selling...)
	out = append(out, separator)
	out = append(out, buying...)
	out = append(out, separator)
	return out
}

func (k keyer) offer(selling, buying asset.ID, offerID uint64) (out []byte) {
	prefix := k.pairPrefix(selling, buying)
	out = make([]byte, len(prefix)+8)
	copy(out, prefix)
	binary.BigEndian.PutUint64(out[len(prefix):], offerID)
	return out
}

func (keyer) offersPrefix() []byte {
	return []byte{tableOffer}
}

func (keyer) unpackOfferID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

func (keyer) offerIndex(offerID uint64) (out []byte) {
	out = make([]byte, 1+8)
	out[0] = tableOfferIndex
	binary.BigEndian.PutUint64(out[1:], offerID)
	return out
}

func (keyer) cursor() []byte {
	return []byte{tableCursor}
}
