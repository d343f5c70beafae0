package redisx

import "time"

const (
	// Cart snapshot: cart:{cart_id} -> JSON cart
	KeyCart = "cart:%s"

	// Idempotency checkout: idem:checkout:{cart_id}:{idempotency_key} -> "pending" | reply "0|ref"
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	// Cart yang expired tetap disimpan sampai retention habis supaya
	// caller dapat "Expired cart", bukan "Cart not found".
	TTLCartRetention = 24 * time.Hour
	TTLIdempotency   = 24 * time.Hour
	TTLDedup         = 48 * time.Hour

	// marker pending harus lebih lama dari timeout checkout di handler
	TTLIdemPending = 30 * time.Second
)
