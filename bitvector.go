package byteslice

import (
	"fmt"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BitVector is a bitmap over all rows of a column, partitioned into blocks
// that match the column's block partition one to one.
//
// Whole-vector operations run block-parallel. A BitVector must not be read
// or written concurrently with a scan that targets it.
type BitVector struct {
	blocks []*BitVectorBlock
	num    int
}

// NewBitVector creates a vector of num rows with every bit set.
func NewBitVector(num int) (*BitVector, error) {
	if num < 0 {
		return nil, fmt.Errorf("%w: bit vector size %d", ErrOutOfRange, num)
	}
	bv := &BitVector{
		blocks: make([]*BitVectorBlock, 0, numBlocksFor(num)),
		num:    num,
	}
	for count := 0; count < num; count += NumTuplesPerBlock {
		blk, err := NewBitVectorBlock(min(NumTuplesPerBlock, num-count))
		if err != nil {
			return nil, err
		}
		bv.blocks = append(bv.blocks, blk)
	}
	return bv, nil
}

// NewBitVectorFor creates an all-ones vector sized to col.
func NewBitVectorFor(col *Column) (*BitVector, error) {
	return NewBitVector(col.NumTuples())
}

// Num returns the number of rows.
func (bv *BitVector) Num() int { return bv.num }

// NumBlocks returns the number of blocks.
func (bv *BitVector) NumBlocks() int { return len(bv.blocks) }

// Block returns block i.
func (bv *BitVector) Block(i int) *BitVectorBlock { return bv.blocks[i] }

// forEachBlock runs fn on every block index, in parallel across blocks.
func (bv *BitVector) forEachBlock(fn func(i int) error) error {
	if len(bv.blocks) == 1 {
		return fn(0)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range bv.blocks {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// SetOnes sets every row bit.
func (bv *BitVector) SetOnes() {
	_ = bv.forEachBlock(func(i int) error {
		bv.blocks[i].SetOnes()
		return nil
	})
}

// SetZeros clears every bit.
func (bv *BitVector) SetZeros() {
	_ = bv.forEachBlock(func(i int) error {
		bv.blocks[i].SetZeros()
		return nil
	})
}

// CountOnes returns the number of set bits.
func (bv *BitVector) CountOnes() int {
	counts := make([]int, len(bv.blocks))
	_ = bv.forEachBlock(func(i int) error {
		counts[i] = bv.blocks[i].CountOnes()
		return nil
	})
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

func (bv *BitVector) checkSize(other *BitVector) error {
	if other.num != bv.num {
		return &ErrSizeMismatch{What: "bit vector", Expected: bv.num, Actual: other.num}
	}
	return nil
}

// And intersects the vector with other in place.
func (bv *BitVector) And(other *BitVector) error {
	if err := bv.checkSize(other); err != nil {
		return err
	}
	return bv.forEachBlock(func(i int) error {
		return bv.blocks[i].And(other.blocks[i])
	})
}

// Or unions other into the vector in place.
func (bv *BitVector) Or(other *BitVector) error {
	if err := bv.checkSize(other); err != nil {
		return err
	}
	return bv.forEachBlock(func(i int) error {
		return bv.blocks[i].Or(other.blocks[i])
	})
}

// GetBit reports whether row pos is set. It panics if pos is outside [0, Num()).
func (bv *BitVector) GetBit(pos int) bool {
	bv.checkPos(pos)
	return bv.blocks[pos/NumTuplesPerBlock].GetBit(pos % NumTuplesPerBlock)
}

// SetBit sets row pos. It panics if pos is outside [0, Num()).
func (bv *BitVector) SetBit(pos int) {
	bv.checkPos(pos)
	bv.blocks[pos/NumTuplesPerBlock].SetBit(pos % NumTuplesPerBlock)
}

// UnsetBit clears row pos. It panics if pos is outside [0, Num()).
func (bv *BitVector) UnsetBit(pos int) {
	bv.checkPos(pos)
	bv.blocks[pos/NumTuplesPerBlock].UnsetBit(pos % NumTuplesPerBlock)
}

func (bv *BitVector) checkPos(pos int) {
	if pos < 0 || pos >= bv.num {
		panic(fmt.Sprintf("byteslice: bit %d out of range [0, %d)", pos, bv.num))
	}
}

// Iterator returns a cursor over the set positions in ascending order.
func (bv *BitVector) Iterator() *BitVectorIterator {
	return newBitVectorIterator(bv)
}

// All returns an iterator over the set positions in ascending order.
func (bv *BitVector) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := bv.Iterator()
		for it.Next() {
			if !yield(it.Position()) {
				return
			}
		}
	}
}

// Positions collects every set position in ascending order.
func (bv *BitVector) Positions() []int {
	out := make([]int, 0, bv.CountOnes())
	for pos := range bv.All() {
		out = append(out, pos)
	}
	return out
}

// matches reports whether bv is partitioned exactly like col.
func (bv *BitVector) matches(col *Column) error {
	if bv.num != col.NumTuples() {
		return &ErrSizeMismatch{What: "bit vector", Expected: col.NumTuples(), Actual: bv.num}
	}
	for i, blk := range col.blocks {
		if bv.blocks[i].Num() != blk.NumTuples() {
			return &ErrSizeMismatch{
				What:     fmt.Sprintf("bit vector block %d", i),
				Expected: blk.NumTuples(),
				Actual:   bv.blocks[i].Num(),
			}
		}
	}
	return nil
}
