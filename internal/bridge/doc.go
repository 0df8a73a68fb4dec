// Package bridge dispatches messages from untrusted embedded web
// applications to the host's privileged services.
//
// The bridge is a security boundary: embedded pages never touch payment
// capability or secrets directly. Every message is decoded at the edge,
// routed to exactly one handler by its operation kind, checked against the
// session's spending budget where money moves, and answered with exactly one
// response carrying the session password so pages can tell genuine host
// replies from anything they could fabricate themselves.
//
// Dispatch is strictly sequential per bridge instance: the transport feeds
// one message at a time, and the budget guard's check-and-debit runs under
// the session lock, so two spends can never both observe the same budget.
package bridge
