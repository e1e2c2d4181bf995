package redisx

import "time"

const (
	// idem:checkout:{marketplace}:{buyer_id}:{key} -> order_id
	KeyIdemCheckout = "idem:checkout:%s:%s:%s"
)

var TTLIdempotency = 24 * time.Hour
