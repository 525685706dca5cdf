package byteslice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tailIsClear reports whether every bit at or beyond Num() is zero.
func tailIsClear(b *BitVectorBlock) bool {
	words := b.Words()
	for pos := b.Num(); pos < len(words)*WordBits; pos++ {
		if words[pos/WordBits]&(1<<(uint(pos)%WordBits)) != 0 {
			return false
		}
	}
	return true
}

func TestBitVectorBlock_New(t *testing.T) {
	for _, num := range []int{0, 1, 63, 64, 65, 255, 256, 257, 1000, NumTuplesPerBlock} {
		b, err := NewBitVectorBlock(num)
		require.NoError(t, err)
		assert.Equal(t, num, b.Num())
		assert.Equal(t, (num+255)/256*4, b.NumWords())
		assert.Equal(t, num, b.CountOnes(), "all ones after construction")
		assert.True(t, tailIsClear(b))
	}

	_, err := NewBitVectorBlock(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewBitVectorBlock(NumTuplesPerBlock + 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBitVectorBlock_Bits(t *testing.T) {
	b, err := NewBitVectorBlock(300)
	require.NoError(t, err)

	b.SetZeros()
	assert.Equal(t, 0, b.CountOnes())

	for _, pos := range []int{0, 63, 64, 299} {
		b.SetBit(pos)
		assert.True(t, b.GetBit(pos))
	}
	assert.Equal(t, 4, b.CountOnes())
	assert.Equal(t, uint64(1)<<63|1, b.GetWord(0))

	b.UnsetBit(63)
	assert.False(t, b.GetBit(63))
	assert.Equal(t, 3, b.CountOnes())

	assert.Panics(t, func() { b.GetBit(300) })
	assert.Panics(t, func() { b.SetBit(-1) })
	assert.Panics(t, func() { b.UnsetBit(1000) })
}

func TestBitVectorBlock_SetWordClearTail(t *testing.T) {
	b, err := NewBitVectorBlock(70)
	require.NoError(t, err)

	b.SetWord(1, ^uint64(0))
	b.SetWord(3, ^uint64(0))
	b.ClearTail()

	assert.Equal(t, uint64(0x3F), b.GetWord(1))
	assert.Equal(t, uint64(0), b.GetWord(3))
	assert.Equal(t, 70, b.CountOnes())
	assert.True(t, tailIsClear(b))
}

func TestBitVectorBlock_AndOrSet(t *testing.T) {
	a, err := NewBitVectorBlock(200)
	require.NoError(t, err)
	b, err := NewBitVectorBlock(200)
	require.NoError(t, err)

	a.SetZeros()
	b.SetZeros()
	for i := 0; i < 200; i += 2 {
		a.SetBit(i)
	}
	for i := 0; i < 200; i += 3 {
		b.SetBit(i)
	}

	and, _ := NewBitVectorBlock(200)
	require.NoError(t, and.Set(a))
	require.NoError(t, and.And(b))
	or, _ := NewBitVectorBlock(200)
	require.NoError(t, or.Set(a))
	require.NoError(t, or.Or(b))

	for i := range 200 {
		assert.Equal(t, i%2 == 0 && i%3 == 0, and.GetBit(i), "and %d", i)
		assert.Equal(t, i%2 == 0 || i%3 == 0, or.GetBit(i), "or %d", i)
	}
	assert.True(t, tailIsClear(and))
	assert.True(t, tailIsClear(or))

	other, _ := NewBitVectorBlock(100)
	var sizeErr *ErrSizeMismatch
	assert.ErrorAs(t, a.And(other), &sizeErr)
	assert.Equal(t, 200, sizeErr.Expected)
	assert.Equal(t, 100, sizeErr.Actual)
	assert.ErrorAs(t, a.Or(other), &sizeErr)
	assert.ErrorAs(t, a.Set(other), &sizeErr)
}

func TestBitVectorBlock_Resize(t *testing.T) {
	b, err := NewBitVectorBlock(1000)
	require.NoError(t, err)

	require.NoError(t, b.Resize(100))
	assert.Equal(t, 100, b.CountOnes())
	assert.True(t, tailIsClear(b))

	require.NoError(t, b.Resize(2000))
	assert.Equal(t, 100, b.CountOnes(), "grown rows read as zero")
	assert.False(t, b.GetBit(150))
	assert.False(t, b.GetBit(999))
	assert.True(t, tailIsClear(b))

	assert.ErrorIs(t, b.Resize(-1), ErrOutOfRange)
	assert.ErrorIs(t, b.Resize(NumTuplesPerBlock+1), ErrOutOfRange)
}

func TestBitVector_Partition(t *testing.T) {
	num := 2*NumTuplesPerBlock + 17
	bv, err := NewBitVector(num)
	require.NoError(t, err)

	assert.Equal(t, num, bv.Num())
	require.Equal(t, 3, bv.NumBlocks())
	assert.Equal(t, NumTuplesPerBlock, bv.Block(0).Num())
	assert.Equal(t, NumTuplesPerBlock, bv.Block(1).Num())
	assert.Equal(t, 17, bv.Block(2).Num())
	assert.Equal(t, num, bv.CountOnes())

	bv.SetZeros()
	assert.Equal(t, 0, bv.CountOnes())

	bv.SetBit(NumTuplesPerBlock)
	bv.SetBit(num - 1)
	assert.True(t, bv.Block(1).GetBit(0))
	assert.True(t, bv.Block(2).GetBit(16))
	assert.Equal(t, 2, bv.CountOnes())

	bv.UnsetBit(num - 1)
	assert.False(t, bv.GetBit(num-1))
	assert.Panics(t, func() { bv.GetBit(num) })

	empty, err := NewBitVector(0)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumBlocks())
	assert.Equal(t, 0, empty.CountOnes())
	assert.Empty(t, empty.Positions())

	_, err = NewBitVector(-5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBitVector_AndOr(t *testing.T) {
	num := NumTuplesPerBlock + 500
	a, err := NewBitVector(num)
	require.NoError(t, err)
	b, err := NewBitVector(num)
	require.NoError(t, err)

	b.SetZeros()
	b.SetBit(3)
	b.SetBit(NumTuplesPerBlock + 7)

	require.NoError(t, a.And(b))
	assert.Equal(t, []int{3, NumTuplesPerBlock + 7}, a.Positions())

	a.SetZeros()
	a.SetBit(10)
	require.NoError(t, a.Or(b))
	assert.Equal(t, []int{3, 10, NumTuplesPerBlock + 7}, a.Positions())

	small, _ := NewBitVector(10)
	var sizeErr *ErrSizeMismatch
	assert.ErrorAs(t, a.And(small), &sizeErr)
	assert.ErrorAs(t, a.Or(small), &sizeErr)
}

func TestBitVectorIterator_Order(t *testing.T) {
	num := NumTuplesPerBlock + 300
	bv, err := NewBitVector(num)
	require.NoError(t, err)
	bv.SetZeros()

	want := []int{0, 1, 62, 63, 64, 127, 128, 1000, NumTuplesPerBlock - 1, NumTuplesPerBlock, NumTuplesPerBlock + 299}
	for _, pos := range want {
		bv.SetBit(pos)
	}

	var got []int
	it := bv.Iterator()
	for it.Next() {
		got = append(got, it.Position())
	}
	assert.Equal(t, want, got)
	assert.False(t, it.Next(), "exhausted iterator stays exhausted")
	assert.Equal(t, want, bv.Positions())
}

func TestBitVectorIterator_FullWords(t *testing.T) {
	bv, err := NewBitVector(200)
	require.NoError(t, err)

	got := bv.Positions()
	require.Len(t, got, 200)
	for i, pos := range got {
		assert.Equal(t, i, pos)
	}
}

func TestBitVector_AllBreak(t *testing.T) {
	bv, err := NewBitVector(1000)
	require.NoError(t, err)

	var got []int
	for pos := range bv.All() {
		if pos == 5 {
			break
		}
		got = append(got, pos)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}
