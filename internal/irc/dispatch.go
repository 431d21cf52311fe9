package irc

import "github.com/dalnet/tinyircd/internal/metrics"

// command is one dispatch table entry
type command struct {
	name      string
	minParams int
	// preReg marks commands usable before registration completes
	preReg bool
	handle func(*Server, *User, *Message)
}

var commands = []command{
	{"AWAY", 0, false, (*Server).handleAway},
	{"INFO", 0, false, (*Server).handleInfo},
	{"JOIN", 1, false, (*Server).handleJoin},
	{"LUSERS", 0, false, (*Server).handleLusers},
	{"MODE", 1, false, (*Server).handleMode},
	{"MOTD", 0, false, (*Server).handleMotd},
	{"NAMES", 0, false, (*Server).handleNames},
	{"NICK", 0, true, (*Server).handleNick},
	{"NOTICE", 0, false, (*Server).handleNotice},
	{"OPER", 2, false, (*Server).handleOper},
	{"PART", 1, false, (*Server).handlePart},
	{"PING", 0, false, (*Server).handlePing},
	{"PONG", 0, false, (*Server).handlePong},
	{"PRIVMSG", 0, false, (*Server).handlePrivmsg},
	{"QUIT", 0, true, (*Server).handleQuit},
	{"TOPIC", 1, false, (*Server).handleTopic},
	{"USER", 4, true, (*Server).handleUser},
	{"VERSION", 0, false, (*Server).handleVersion},
	{"WALLOPS", 1, false, (*Server).handleWallops},
	{"WHO", 0, false, (*Server).handleWho},
	{"WHOIS", 0, false, (*Server).handleWhois},
}

func lookupCommand(name string) *command {
	for i := range commands {
		if commands[i].name == name {
			return &commands[i]
		}
	}
	return nil
}

// dispatch runs the handler for one parsed line after checking
// registration state and parameter count
func (s *Server) dispatch(u *User, msg *Message) {
	cmd := lookupCommand(msg.Command)
	if cmd == nil {
		metrics.CommandsTotal.WithLabelValues("unknown").Inc()
		if u.registered() {
			s.numeric(u, ERR_UNKNOWNCOMMAND, msg.Command, "Unknown command")
		} else {
			s.numeric(u, ERR_NOTREGISTERED, "You have not registered")
		}
		return
	}

	metrics.CommandsTotal.WithLabelValues(cmd.name).Inc()

	if !u.registered() && !cmd.preReg {
		return
	}

	if cmd.minParams > 0 && (len(msg.Params) < cmd.minParams || msg.Params[cmd.minParams-1] == "") {
		s.numeric(u, ERR_NEEDMOREPARAMS, msg.Command, "Not enough parameters")
		return
	}

	cmd.handle(s, u, msg)
}
