package irc

import "strings"

// Message is one parsed client line
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// ParseMessage splits a raw line into prefix, command and at most
// maxParams parameters. A parameter starting with ':' takes the rest of
// the line verbatim and ends scanning. It reports false when the line
// carries no command.
func ParseMessage(line string, maxParams int) (Message, bool) {
	var msg Message

	rest := line
	if strings.HasPrefix(rest, ":") {
		end := strings.IndexByte(rest, ' ')
		if end < 0 {
			return msg, false
		}
		msg.Prefix = rest[1:end]
		rest = rest[end:]
	}

	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return msg, false
	}

	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	msg.Command = upperASCII(rest[:end])
	rest = rest[end:]

	msg.Params = make([]string, 0, maxParams)
	for len(msg.Params) < maxParams {
		rest = strings.TrimLeft(rest, " ")
		if rest == "" {
			break
		}
		if rest[0] == ':' {
			msg.Params = append(msg.Params, rest[1:])
			break
		}
		end = strings.IndexByte(rest, ' ')
		if end < 0 {
			end = len(rest)
		}
		msg.Params = append(msg.Params, rest[:end])
		rest = rest[end:]
	}

	return msg, true
}

// Param returns the i'th parameter or "" when absent
func (m *Message) Param(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

func upperASCII(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'a' && b[j] <= 'z' {
					b[j] -= 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
