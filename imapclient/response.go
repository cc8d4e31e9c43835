package imapclient

import (
	"fmt"
	"strings"

	imap "github.com/arkemlar/imapengine"
)

// classifyStatus turns the tokens following a tagged status line's tag
// (e.g. "OK", "[ALREADYEXISTS]", "Message", "already", "exists.") into a
// StatusResponse. The tokenizer treats '[' and ']' as ordinary atom
// characters, so a response code arrives as one or more atoms that start
// with '[' and end with ']'; extractResponseCode reassembles it.
func classifyStatus(values []imap.Value) (*imap.StatusResponse, error) {
	if len(values) == 0 {
		return nil, imap.NewConnError(imap.ErrBadRequest, fmt.Errorf("imapclient: empty status response"))
	}

	typ := imap.StatusResponseType(strings.ToUpper(values[0].String()))
	switch typ {
	case imap.StatusResponseTypeOK, imap.StatusResponseTypeNo, imap.StatusResponseTypeBad,
		imap.StatusResponseTypePreAuth, imap.StatusResponseTypeBye:
	default:
		return nil, imap.NewConnError(imap.ErrBadRequest, fmt.Errorf("imapclient: unknown status type %q", values[0]))
	}

	code, rest := extractResponseCode(values[1:])
	return &imap.StatusResponse{
		Type: typ,
		Code: imap.ResponseCode(code),
		Text: joinText(rest),
	}, nil
}

// extractResponseCode looks for a leading bracketed response code in rest
// and, if present, returns its name (without brackets or arguments) and the
// remaining values with the whole bracketed run removed. Use
// splitResponseCode instead when the code's own arguments are needed, e.g.
// "UIDVALIDITY" or "PERMANENTFLAGS".
func extractResponseCode(rest []imap.Value) (string, []imap.Value) {
	name, _, tail := splitResponseCode(rest)
	return name, tail
}

// splitResponseCode looks for a leading bracketed response code in rest and
// splits it into the code's name, the tokens inside the brackets after the
// name (e.g. "3857529045" for "[UIDVALIDITY 3857529045]"), and the
// remaining values with the whole bracketed run removed.
func splitResponseCode(rest []imap.Value) (name string, args []imap.Value, tail []imap.Value) {
	if len(rest) == 0 {
		return "", nil, rest
	}
	first := rest[0].String()
	if !strings.HasPrefix(first, "[") {
		return "", nil, rest
	}

	body := strings.TrimPrefix(first, "[")
	spaceIdx := strings.IndexByte(body, ' ')
	if spaceIdx < 0 {
		name = body
	} else {
		name = body[:spaceIdx]
	}
	if closeIdx := strings.IndexByte(name, ']'); closeIdx >= 0 {
		// Single-token code with no arguments: "[ALERT]".
		return name[:closeIdx], nil, rest[1:]
	}
	if spaceIdx >= 0 {
		arg := body[spaceIdx+1:]
		if trimmed := strings.TrimSuffix(arg, "]"); trimmed != arg {
			// Single-token code with one inline argument: "[UNSEEN 23]".
			if trimmed != "" {
				args = append(args, imap.Atom(trimmed))
			}
			return name, args, rest[1:]
		}
		if arg != "" {
			args = append(args, imap.Atom(arg))
		}
	}

	for i := 1; i < len(rest); i++ {
		s := rest[i].String()
		if trimmed := strings.TrimSuffix(s, "]"); trimmed != s {
			if trimmed != "" {
				args = append(args, imap.Atom(trimmed))
			}
			return name, args, rest[i+1:]
		}
		args = append(args, rest[i])
	}
	// Unterminated bracket: treat the opening token as ordinary text
	// rather than failing the whole response.
	return "", nil, rest
}

func joinText(values []imap.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// responseCodeArgs extracts the raw tokens inside a bracketed response code
// whose name matches want, e.g. responseCodeArgs(rest, "APPENDUID") for
// "[APPENDUID 38505 3955]" returns ["38505", "3955"].
func responseCodeArgs(rest []imap.Value, want string) ([]imap.Value, bool) {
	if len(rest) == 0 {
		return nil, false
	}
	first := rest[0].String()
	if first != "["+want && !strings.HasPrefix(first, "["+want+" ") {
		return nil, false
	}

	var args []imap.Value
	if idx := strings.IndexByte(first, ' '); idx >= 0 {
		arg := strings.TrimSuffix(first[idx+1:], "]")
		if arg != "" {
			args = append(args, imap.Atom(arg))
		}
	}
	if strings.HasSuffix(first, "]") {
		return args, true
	}

	for i := 1; i < len(rest); i++ {
		s := rest[i].String()
		if strings.HasSuffix(s, "]") {
			args = append(args, imap.Atom(strings.TrimSuffix(s, "]")))
			return args, true
		}
		args = append(args, rest[i])
	}
	return args, true
}
