// Package command turns a decoded RSP array into a typed Command, or a
// typed ParseError describing why it couldn't.
package command

import "strings"

// Action identifies which operation a Command requests.
type Action uint8

const (
	Ping Action = iota
	Echo
	Set
	Setex
	Setnx
	Get
	Expire
	Pexpire
	Ttl
	Multi
	Exec
	Discard
	Watch
	Unwatch
	ClientID
)

// String returns the canonical lower-case name used in error messages.
func (a Action) String() string {
	switch a {
	case Ping:
		return "ping"
	case Echo:
		return "echo"
	case Set:
		return "set"
	case Setex:
		return "setex"
	case Setnx:
		return "setnx"
	case Get:
		return "get"
	case Expire:
		return "expire"
	case Pexpire:
		return "pexpire"
	case Ttl:
		return "ttl"
	case Multi:
		return "multi"
	case Exec:
		return "exec"
	case Discard:
		return "discard"
	case Watch:
		return "watch"
	case Unwatch:
		return "unwatch"
	case ClientID:
		return "clientid"
	default:
		return "unknown"
	}
}

// actionFromToken resolves the case-insensitive wire token to an Action.
// The bool is false for an unrecognized token.
func actionFromToken(tok string) (Action, bool) {
	switch strings.ToUpper(tok) {
	case "PING":
		return Ping, true
	case "ECHO":
		return Echo, true
	case "SET":
		return Set, true
	case "SETEX":
		return Setex, true
	case "SETNX":
		return Setnx, true
	case "GET":
		return Get, true
	case "EXPIRE":
		return Expire, true
	case "PEXPIRE":
		return Pexpire, true
	case "TTL":
		return Ttl, true
	case "MULTI":
		return Multi, true
	case "EXEC":
		return Exec, true
	case "DISCARD":
		return Discard, true
	case "WATCH":
		return Watch, true
	case "UNWATCH":
		return Unwatch, true
	case "CLIENTID":
		return ClientID, true
	default:
		return 0, false
	}
}

// LockMode is the access a Command needs on the shared Store.
type LockMode uint8

const (
	LockNone LockMode = iota
	LockRead
	LockWrite
)

func (a Action) lockMode() LockMode {
	switch a {
	case Get, Ttl:
		return LockRead
	case Set, Setex, Setnx, Expire, Pexpire, Exec:
		return LockWrite
	default:
		return LockNone
	}
}

// IsTxnControl reports whether the action manipulates transaction/WATCH
// state directly rather than being queued inside one.
func (a Action) IsTxnControl() bool {
	switch a {
	case Multi, Exec, Discard, Watch, Unwatch:
		return true
	default:
		return false
	}
}
