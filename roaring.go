package byteslice

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/byteslice/internal/conv"
)

const roaringBatch = 4096

// ToRoaring converts the set positions into a 32-bit Roaring bitmap.
// Set positions at or beyond 2^32 yield ErrOutOfRange.
func (bv *BitVector) ToRoaring() (*roaring.Bitmap, error) {
	rb := roaring.New()
	batch := make([]uint32, 0, roaringBatch)
	it := bv.Iterator()
	for it.Next() {
		pos, err := conv.IntToUint32(it.Position())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutOfRange, err)
		}
		batch = append(batch, pos)
		if len(batch) == roaringBatch {
			rb.AddMany(batch)
			batch = batch[:0]
		}
	}
	rb.AddMany(batch)
	rb.RunOptimize()
	return rb, nil
}

// BitVectorFromRoaring builds a vector of num rows whose set bits are the
// members of rb. Members at or beyond num yield ErrOutOfRange.
func BitVectorFromRoaring(rb *roaring.Bitmap, num int) (*BitVector, error) {
	bv, err := NewBitVector(num)
	if err != nil {
		return nil, err
	}
	bv.SetZeros()
	if rb.IsEmpty() {
		return bv, nil
	}
	if int64(rb.Maximum()) >= int64(num) {
		return nil, fmt.Errorf("%w: roaring member %d not below %d", ErrOutOfRange, rb.Maximum(), num)
	}
	it := rb.Iterator()
	for it.HasNext() {
		bv.SetBit(int(it.Next()))
	}
	return bv, nil
}
