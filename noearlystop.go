//go:build noearlystop

package byteslice

const earlyStop = false
