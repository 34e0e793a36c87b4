// Package parallel runs independent CPU work, such as image decoding, on a
// fixed set of goroutines.
//
// Each worker owns a queue and steals from the other queues when its own is
// empty, so one slow item does not hold back the rest of a batch.
package parallel
