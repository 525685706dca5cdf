package byteslice

import (
	"fmt"

	"github.com/hupe1980/byteslice/internal/mem"
	"github.com/hupe1980/byteslice/internal/simd"
)

// BitVectorBlock is a bitmap over the rows of one column block.
//
// Row i lives in word i/64 at bit i%64. Storage always covers a full block
// and is 32-byte aligned. Bits at or beyond Num() always read as zero once a
// whole-word mutation has finished.
type BitVectorBlock struct {
	words    []uint64
	num      int
	numWords int
}

// NewBitVectorBlock creates a block of num rows with every bit set.
func NewBitVectorBlock(num int) (*BitVectorBlock, error) {
	if num < 0 || num > NumTuplesPerBlock {
		return nil, fmt.Errorf("%w: bit vector block size %d", ErrOutOfRange, num)
	}
	b := &BitVectorBlock{
		words: mem.AllocAlignedUint64(maxWordsPerBlock),
	}
	b.setNum(num)
	b.SetOnes()
	return b, nil
}

func (b *BitVectorBlock) setNum(num int) {
	b.num = num
	b.numWords = (num + AvxBits - 1) / AvxBits * wordsPerAvx
}

// Num returns the number of rows covered by the block.
func (b *BitVectorBlock) Num() int { return b.num }

// NumWords returns the number of words in use, always a multiple of four.
func (b *BitVectorBlock) NumWords() int { return b.numWords }

// Words exposes the words in use. The slice aliases the block storage.
func (b *BitVectorBlock) Words() []uint64 { return b.words[:b.numWords] }

// SetOnes sets every row bit.
func (b *BitVectorBlock) SetOnes() {
	simd.FillWords(b.words[:b.numWords], ^uint64(0))
	b.ClearTail()
}

// SetZeros clears every bit.
func (b *BitVectorBlock) SetZeros() {
	simd.FillWords(b.words[:b.numWords], 0)
}

// CountOnes returns the number of set bits.
func (b *BitVectorBlock) CountOnes() int {
	return simd.PopcountWords(b.words[:b.numWords])
}

func (b *BitVectorBlock) checkSize(other *BitVectorBlock) error {
	if other.num != b.num {
		return &ErrSizeMismatch{What: "bit vector block", Expected: b.num, Actual: other.num}
	}
	return nil
}

// And intersects the block with other in place.
func (b *BitVectorBlock) And(other *BitVectorBlock) error {
	if err := b.checkSize(other); err != nil {
		return err
	}
	simd.AndWords(b.words[:b.numWords], other.words[:b.numWords])
	b.ClearTail()
	return nil
}

// Or unions other into the block in place.
func (b *BitVectorBlock) Or(other *BitVectorBlock) error {
	if err := b.checkSize(other); err != nil {
		return err
	}
	simd.OrWords(b.words[:b.numWords], other.words[:b.numWords])
	b.ClearTail()
	return nil
}

// Set copies the bits of other into the block.
func (b *BitVectorBlock) Set(other *BitVectorBlock) error {
	if err := b.checkSize(other); err != nil {
		return err
	}
	copy(b.words[:b.numWords], other.words[:b.numWords])
	b.ClearTail()
	return nil
}

func (b *BitVectorBlock) checkPos(pos int) {
	if pos < 0 || pos >= b.num {
		panic(fmt.Sprintf("byteslice: bit %d out of range [0, %d)", pos, b.num))
	}
}

// GetBit reports whether row pos is set. It panics if pos is outside [0, Num()).
func (b *BitVectorBlock) GetBit(pos int) bool {
	b.checkPos(pos)
	return b.words[pos/WordBits]&(1<<(uint(pos)%WordBits)) != 0
}

// SetBit sets row pos. It panics if pos is outside [0, Num()).
func (b *BitVectorBlock) SetBit(pos int) {
	b.checkPos(pos)
	b.words[pos/WordBits] |= 1 << (uint(pos) % WordBits)
}

// UnsetBit clears row pos. It panics if pos is outside [0, Num()).
func (b *BitVectorBlock) UnsetBit(pos int) {
	b.checkPos(pos)
	b.words[pos/WordBits] &^= 1 << (uint(pos) % WordBits)
}

// GetWord returns word i. It panics if i is outside [0, NumWords()).
func (b *BitVectorBlock) GetWord(i int) uint64 {
	return b.words[:b.numWords][i]
}

// SetWord replaces word i. Callers writing the last words must call
// ClearTail afterwards.
func (b *BitVectorBlock) SetWord(i int, w uint64) {
	b.words[:b.numWords][i] = w
}

// ClearTail zeroes every bit from Num() up to the end of the words in use.
func (b *BitVectorBlock) ClearTail() {
	b.clearFrom(b.num, b.numWords)
}

func (b *BitVectorBlock) clearFrom(pos, numWords int) {
	w := pos / WordBits
	if rem := uint(pos) % WordBits; rem != 0 {
		b.words[w] &= (uint64(1) << rem) - 1
		w++
	}
	if w < numWords {
		clear(b.words[w:numWords])
	}
}

// Resize changes the number of rows. Rows exposed by growing read as zero.
func (b *BitVectorBlock) Resize(num int) error {
	if num < 0 || num > NumTuplesPerBlock {
		return fmt.Errorf("%w: bit vector block size %d", ErrOutOfRange, num)
	}
	b.clearFrom(min(num, b.num), b.numWords)
	b.setNum(num)
	return nil
}
