//go:build !noearlystop

package byteslice

// earlyStop lets byte-sliced scans leave the slice loop once no lane can
// change its result. Build with -tags noearlystop to measure without it.
const earlyStop = true
