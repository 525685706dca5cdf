// Package conv provides checked integer conversions.
//
// Row counts read back from serialized blocks and row ids handed to roaring
// bitmaps cross between int and fixed-width types; these helpers reject
// values that would wrap.
package conv
