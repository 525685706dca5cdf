package byteslice

// BitVectorIterator enumerates the set positions of a BitVector in
// ascending order.
//
// Each non-zero word is decoded at once into a position stack, pushed from
// the highest bit down so that pops come out ascending. The iterator is
// single pass and must not outlive mutations of the vector.
type BitVectorIterator struct {
	bv    *BitVector
	stack [WordBits]int
	top   int
	pos   int

	// cursors name the next word not yet decoded
	blockID     int
	wordID      int
	blockOffset int
}

func newBitVectorIterator(bv *BitVector) *BitVectorIterator {
	return &BitVectorIterator{bv: bv, pos: -1}
}

// Next advances to the next set position and reports whether one exists.
func (it *BitVectorIterator) Next() bool {
	if it.top == 0 && !it.fill() {
		return false
	}
	it.top--
	it.pos = it.stack[it.top]
	return true
}

// Position returns the position found by the last successful Next.
func (it *BitVectorIterator) Position() int {
	return it.pos
}

// fill decodes the next non-zero word onto the stack.
func (it *BitVectorIterator) fill() bool {
	blocks := it.bv.blocks
	for it.blockID < len(blocks) {
		blk := blocks[it.blockID]
		words := blk.Words()
		for it.wordID < len(words) {
			w := words[it.wordID]
			base := it.blockOffset + it.wordID*WordBits
			it.wordID++
			if w == 0 {
				continue
			}
			top := 0
			for bit := WordBits - 1; bit >= 0; bit-- {
				it.stack[top] = base + bit
				top += int((w >> uint(bit)) & 1)
			}
			it.top = top
			return true
		}
		it.blockOffset += blk.Num()
		it.blockID++
		it.wordID = 0
	}
	return false
}
