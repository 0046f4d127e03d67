// ABOUTME: Response line formatting for the command protocol
// ABOUTME: One line per response: "CODE arg1 arg2 ...", whitespace-containing args single-quoted
package player

import "strings"

// Code identifies the kind of broadcast or unicast response being sent.
type Code uint8

const (
	CodeOhai Code = iota
	CodeTtfn
	CodeState
	CodeTime
	CodeFile
	CodeEnd
	CodeAck
	CodeFeatures
)

func (c Code) String() string {
	switch c {
	case CodeOhai:
		return "OHAI"
	case CodeTtfn:
		return "TTFN"
	case CodeState:
		return "STATE"
	case CodeTime:
		return "TIME"
	case CodeFile:
		return "FILE"
	case CodeEnd:
		return "END"
	case CodeAck:
		return "ACK"
	case CodeFeatures:
		return "FEATURES"
	default:
		return "UNKNOWN"
	}
}

// Response is a single line of the response protocol: a code plus an
// ordered list of arguments.
type Response struct {
	code Code
	args []string
}

// NewResponse starts a Response with no arguments.
func NewResponse(code Code) Response {
	return Response{code: code}
}

// AddArg appends an unescaped argument, returning the Response for
// chaining.
func (r Response) AddArg(arg string) Response {
	r.args = append(r.args, arg)
	return r
}

// Pack renders the response as a single protocol line, sans newline.
// An argument containing whitespace is wrapped in single quotes; a
// literal single quote inside such an argument is backslash-escaped.
func (r Response) Pack() string {
	var b strings.Builder
	b.WriteString(r.code.String())
	for _, arg := range r.args {
		b.WriteByte(' ')
		b.WriteString(escapeArg(arg))
	}
	return b.String()
}

func escapeArg(arg string) string {
	if !strings.ContainsAny(arg, " \t\r\n") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, c := range arg {
		if c == '\'' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	b.WriteByte('\'')
	return b.String()
}

// ResponseSink is anything a Response can be sent to: the reactor's
// client registry, in the running daemon, or a recording fake in
// tests. id is the recipient's connection id, or 0 to mean "every
// connected listener" (a broadcast).
type ResponseSink interface {
	Respond(r Response, id uint)
}
