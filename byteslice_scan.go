package byteslice

import (
	"github.com/hupe1980/byteslice/internal/simd"
)

// prefetchDistance is how far ahead of the current row the scan hints loads.
const prefetchDistance = 1024

// scanMasks are the running per-lane masks of one 32-row step.
// A lane in equal has matched every plane seen so far.
type scanMasks struct {
	less    simd.Vec256
	greater simd.Vec256
	equal   simd.Vec256
}

func newScanMasks() scanMasks {
	return scanMasks{equal: simd.Ones()}
}

// step folds one byte plane into the masks. On the last plane the equal
// mask is only kept when the comparator reads it.
func (m *scanMasks) step(cmp Comparator, a, b simd.Vec256, last bool) {
	switch cmp {
	case Equal, Inequal:
		m.equal = m.equal.And(simd.CmpEqI8(a, b))
	case Less, LessEqual:
		m.less = m.less.Or(m.equal.And(simd.CmpLtI8(a, b)))
		if !last || cmp == LessEqual {
			m.equal = m.equal.And(simd.CmpEqI8(a, b))
		}
	case Greater, GreaterEqual:
		m.greater = m.greater.Or(m.equal.And(simd.CmpGtI8(a, b)))
		if !last || cmp == GreaterEqual {
			m.equal = m.equal.And(simd.CmpEqI8(a, b))
		}
	}
}

// settled reports whether no remaining plane can change a lane that matters.
func (m *scanMasks) settled(opt Bitwise, laneMask uint32) bool {
	if opt == BitwiseSet {
		return m.equal.IsZero()
	}
	return laneMask&m.equal.MoveMask() == 0
}

func (m *scanMasks) result(cmp Comparator) simd.Vec256 {
	switch cmp {
	case LessEqual:
		return m.less.Or(m.equal)
	case Less:
		return m.less
	case GreaterEqual:
		return m.greater.Or(m.equal)
	case Greater:
		return m.greater
	case Equal:
		return m.equal
	default:
		return m.equal.Not()
	}
}

// laneMask selects the lanes of a 32-row step whose result can still
// change the destination word.
func laneMask(opt Bitwise, existing uint64, shift int) uint32 {
	switch opt {
	case BitwiseAnd:
		return uint32(existing >> uint(shift))
	case BitwiseOr:
		return ^uint32(existing >> uint(shift))
	default:
		return ^uint32(0)
	}
}

// Scan implements ColumnBlock.
func (b *ByteSliceColumnBlock) Scan(cmp Comparator, literal uint64, bv *BitVectorBlock, opt Bitwise) error {
	if err := validateScanArgs(cmp, opt); err != nil {
		return err
	}
	if err := checkScanTarget(b.num, bv); err != nil {
		return err
	}
	if literal > b.mask {
		fillConstant(bv, literalAboveDomain(cmp), opt)
		return nil
	}

	if b.dir == DirectionRight {
		literal <<= b.padding
	}
	var lit [maxBytesPerCode]simd.Vec256
	for j := range b.numBytes {
		shift := uint(8 * (b.numBytes - 1 - j))
		lit[j] = simd.Set1(byte(literal>>shift) ^ flipBit)
	}

	b.scan(cmp, &lit, nil, bv, opt)
	return nil
}

// ScanBlock implements ColumnBlock.
func (b *ByteSliceColumnBlock) ScanBlock(cmp Comparator, other ColumnBlock, bv *BitVectorBlock, opt Bitwise) error {
	if err := validateScanArgs(cmp, opt); err != nil {
		return err
	}
	if err := checkPeer(b, other); err != nil {
		return err
	}
	peer, ok := other.(*ByteSliceColumnBlock)
	if !ok {
		return &ErrTypeMismatch{ExpectedType: b.Type(), ActualType: other.Type(), ExpectedWidth: b.bitWidth, ActualWidth: other.BitWidth()}
	}
	if err := checkScanTarget(b.num, bv); err != nil {
		return err
	}

	b.scan(cmp, nil, peer, bv, opt)
	return nil
}

// scan compares every row against either the broadcast literal planes or
// the matching rows of peer. Exactly one of lit and peer is non-nil.
func (b *ByteSliceColumnBlock) scan(cmp Comparator, lit *[maxBytesPerCode]simd.Vec256, peer *ByteSliceColumnBlock, bv *BitVectorBlock, opt Bitwise) {
	last := b.numBytes - 1
	words := bv.Words()

	for word, offset := 0, 0; offset < b.num; word, offset = word+1, offset+WordBits {
		existing := words[word]
		var result uint64

		for i := 0; i < WordBits; i += simd.Width {
			lanes := laneMask(opt, existing, i)
			m := newScanMasks()

			if !earlyStop || opt == BitwiseSet || lanes != 0 {
				row := offset + i
				for j := 0; j <= last; j++ {
					if j < 2 && row+prefetchDistance < NumTuplesPerBlock {
						simd.Prefetch(b.slices[j][row+prefetchDistance:])
					}
					a := simd.Load(b.slices[j][row:])
					var rhs simd.Vec256
					if peer != nil {
						rhs = simd.Load(peer.slices[j][row:])
					} else {
						rhs = lit[j]
					}
					m.step(cmp, a, rhs, j == last)
					if earlyStop && j < last && m.settled(opt, lanes) {
						break
					}
				}
			}

			result |= uint64(m.result(cmp).MoveMask()) << uint(i)
		}

		words[word] = opt.combine(existing, result)
	}

	bv.ClearTail()
}
