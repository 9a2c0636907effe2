package service

import (
	"bankroll/models"
)

// BucketBalance is one entry in an ordered list of debit-eligible buckets.
type BucketBalance struct {
	Bucket    models.BalanceBucket
	Available int64
}

// BucketTake is how much a debit takes from a single bucket.
type BucketTake struct {
	Bucket models.BalanceBucket
	Amount int64
}

// Allocate computes a waterfall allocation of target across the ordered
// bucket list: each bucket is exhausted fully before the next is touched.
// It is a pure function with no side effects; the returned shortfall is
// zero when the buckets cover the target. Callers must validate the
// allocation before applying any write.
func Allocate(buckets []BucketBalance, target int64) ([]BucketTake, int64) {
	takes := make([]BucketTake, 0, len(buckets))
	remaining := target

	for _, b := range buckets {
		if remaining == 0 {
			break
		}
		take := remaining
		if b.Available < take {
			take = b.Available
		}
		if take <= 0 {
			continue
		}
		takes = append(takes, BucketTake{Bucket: b.Bucket, Amount: take})
		remaining -= take
	}

	return takes, remaining
}
