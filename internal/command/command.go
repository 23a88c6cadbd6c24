package command

import (
	"strconv"
	"strings"

	"github.com/jffjs/kyev/internal/flags"
	"github.com/jffjs/kyev/internal/resp"
)

// ExpireUnit distinguishes a seconds-granularity deadline (EX, EXPIRE,
// SETEX) from a milliseconds-granularity one (PX, PEXPIRE).
type ExpireUnit uint8

const (
	ExpireNone ExpireUnit = iota
	ExpireSeconds
	ExpireMillis
)

// SetOptions holds the trailing option set parsed from a SET command.
type SetOptions struct {
	NX      bool
	XX      bool
	KeepTTL bool

	ExpireUnit  ExpireUnit
	ExpireValue int64
}

// Command is the parsed representation of one client request.
type Command struct {
	Action Action
	Lock   LockMode

	Key  string
	Keys []string // WATCH

	Value  string // SET/SETEX/SETNX payload, or PING/ECHO argument
	HasArg bool    // PING: whether an optional argument was given

	SetOpts SetOptions

	ExpireUnit  ExpireUnit // EXPIRE: seconds, PEXPIRE: millis
	ExpireValue int64
}

// ParseCommand decodes v, which must be an RSP Array of Bulk Strings, into
// a Command.
func ParseCommand(v resp.Value) (*Command, *ParseError) {
	if v.Kind != resp.Array {
		return nil, errMustBeArray()
	}
	if len(v.Elems) == 0 {
		return nil, errIsEmpty()
	}

	tok, ok := v.Elems[0].AsString()
	if !ok {
		return nil, errInvalidCommand()
	}

	action, ok := actionFromToken(tok)
	if !ok {
		return nil, errUnknownCommand(tok)
	}

	args := make([]string, 0, len(v.Elems)-1)
	for _, elem := range v.Elems[1:] {
		s, ok := elem.AsString()
		if !ok {
			return nil, errInvalidArgs(action)
		}
		args = append(args, s)
	}

	return parseArgs(action, args)
}

func parseArgs(action Action, args []string) (*Command, *ParseError) {
	switch action {
	case Ping:
		return parsePing(args)
	case Echo:
		return parseEcho(args)
	case Get:
		return parseSingleKey(Get, LockRead, args)
	case Ttl:
		return parseSingleKey(Ttl, LockRead, args)
	case Set:
		return parseSet(args)
	case Setex:
		return parseSetex(args)
	case Setnx:
		return parseSetnx(args)
	case Expire:
		return parseExpire(Expire, ExpireSeconds, args)
	case Pexpire:
		return parseExpire(Pexpire, ExpireMillis, args)
	case Multi, Discard, Unwatch, ClientID:
		return parseNoArgs(action, args)
	case Exec:
		return parseNoArgs(action, args)
	case Watch:
		return parseWatch(args)
	default:
		return nil, errInvalidCommand()
	}
}

func parsePing(args []string) (*Command, *ParseError) {
	switch len(args) {
	case 0:
		return &Command{Action: Ping, Lock: LockNone}, nil
	case 1:
		return &Command{Action: Ping, Lock: LockNone, Value: args[0], HasArg: true}, nil
	default:
		return nil, errWrongNumberArgs(Ping)
	}
}

func parseEcho(args []string) (*Command, *ParseError) {
	if len(args) != 1 {
		return nil, errWrongNumberArgs(Echo)
	}
	return &Command{Action: Echo, Lock: LockNone, Value: args[0], HasArg: true}, nil
}

func parseSingleKey(action Action, lock LockMode, args []string) (*Command, *ParseError) {
	if len(args) != 1 {
		return nil, errWrongNumberArgs(action)
	}
	return &Command{Action: action, Lock: lock, Key: args[0]}, nil
}

func parseNoArgs(action Action, args []string) (*Command, *ParseError) {
	if len(args) != 0 {
		return nil, errWrongNumberArgs(action)
	}
	return &Command{Action: action, Lock: action.lockMode()}, nil
}

func parseWatch(args []string) (*Command, *ParseError) {
	if len(args) == 0 {
		return nil, errWrongNumberArgs(Watch)
	}
	return &Command{Action: Watch, Lock: LockNone, Keys: args}, nil
}

func parseSet(args []string) (*Command, *ParseError) {
	if len(args) < 2 {
		return nil, errWrongNumberArgs(Set)
	}

	opts := SetOptions{}
	i := 2
	for i < len(args) {
		switch strings.ToUpper(args[i]) {
		case "EX":
			i++
			if i >= len(args) {
				return nil, errSyntax(Set)
			}
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return nil, errSyntax(Set)
			}
			if n <= 0 {
				return nil, errInvalidTtl(Set)
			}
			opts.ExpireUnit = ExpireSeconds
			opts.ExpireValue = n
		case "PX":
			i++
			if i >= len(args) {
				return nil, errSyntax(Set)
			}
			n, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				return nil, errSyntax(Set)
			}
			if n <= 0 {
				return nil, errInvalidTtl(Set)
			}
			opts.ExpireUnit = ExpireMillis
			opts.ExpireValue = n
		case "NX":
			if opts.XX {
				return nil, errSyntax(Set)
			}
			opts.NX = true
		case "XX":
			if opts.NX {
				return nil, errSyntax(Set)
			}
			opts.XX = true
		case "KEEPTTL":
			opts.KeepTTL = true
		default:
			// Lenient by default (ignored); strict-set-options rejects it.
			if flags.KillSwitch(flags.StrictSetOptions) {
				return nil, errSyntax(Set)
			}
		}
		i++
	}

	return &Command{
		Action:  Set,
		Lock:    LockWrite,
		Key:     args[0],
		Value:   args[1],
		SetOpts: opts,
	}, nil
}

func parseSetex(args []string) (*Command, *ParseError) {
	if len(args) != 3 {
		return nil, errWrongNumberArgs(Setex)
	}
	seconds, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, errInvalidTtl(Setex)
	}
	return &Command{
		Action:      Setex,
		Lock:        LockWrite,
		Key:         args[0],
		Value:       args[2],
		ExpireUnit:  ExpireSeconds,
		ExpireValue: int64(seconds),
	}, nil
}

func parseSetnx(args []string) (*Command, *ParseError) {
	if len(args) != 2 {
		return nil, errWrongNumberArgs(Setnx)
	}
	return &Command{Action: Setnx, Lock: LockWrite, Key: args[0], Value: args[1]}, nil
}

func parseExpire(action Action, unit ExpireUnit, args []string) (*Command, *ParseError) {
	if len(args) != 2 {
		return nil, errWrongNumberArgs(action)
	}
	n, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return nil, errInvalidTtl(action)
	}
	return &Command{Action: action, Lock: LockWrite, Key: args[0], ExpireUnit: unit, ExpireValue: n}, nil
}
