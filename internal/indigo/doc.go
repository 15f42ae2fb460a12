// Package indigo provides the REST client for the Indigo home-automation server.
//
// The Indigo REST API is not proven safe under concurrent request handling,
// so every request from every part of the bridge is funnelled through a
// single ordered queue with exactly one request in flight at a time. This
// trades throughput for correctness and gives a total FIFO order across all
// outbound traffic.
//
// # Architecture
//
//	callers ──▶ Request()/RequestJSON() ──▶ ordered queue ──▶ worker ──▶ Indigo
//
// The client follows the same lifecycle pattern as other components:
//
//	client := indigo.New(cfg)
//	client.Start(ctx)
//	defer client.Close()
//
// # Known server bug
//
// When the first device in a listing has been marked non-discoverable,
// Indigo emits a stray leading comma in the listing array. RepairListing
// detects and strips it before parsing; well-formed bodies pass through
// untouched.
//
// # Failure handling
//
// Redirects are never followed; a misconfigured server must not silently
// redirect writes. Each request carries a bounded timeout; a hung request is
// dropped and its caller informed, rather than stalling the queue forever.
// Requests are never retried or reordered.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package indigo
