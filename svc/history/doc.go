// Package history is the append-only audit trail of generated, sent and
// downloaded letters. There is no update or delete; rows outlive the intern
// they refer to.
package history
