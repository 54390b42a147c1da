// Package audit persists evidence for every governance verdict.
//
// The write policy is per verdict status: deny and break-glass verdicts
// block the response until the record is written or a bounded timeout
// fires, while allow and degrade records flow through an async buffered
// worker that drains on shutdown. A failed blocking write never flips
// the verdict; it raises an AUDIT_WRITE_FAILED alert so operators know
// evidence was lost.
//
// Records are append-only. The gateway never updates or deletes them;
// retention is enforced out of band by the retention pruner.
package audit
