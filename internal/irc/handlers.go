// Package irc is the tinyircd protocol engine: line framing and parsing,
// the fixed user and channel tables, command dispatch and handlers, reply
// routing and the keepalive clock.
package irc

// This file contains documentation for the command handlers.
// The implementations are split across:
// - register.go: NICK, USER and the welcome sequence
// - channels.go: JOIN, PART, TOPIC, NAMES
// - messages.go: PRIVMSG, NOTICE, WALLOPS
// - modes.go: MODE, OPER, AWAY
// - queries.go: WHO, WHOIS, LUSERS, MOTD, INFO, VERSION
// - session.go: PING, PONG, QUIT

/*
Handler Summary:

Before registration only NICK, USER and QUIT run. Other known commands
are dropped without a reply; unknown ones get 451.

Registration:
- NICK: 431 no nick, 432 bad characters, 433 in use
  - Completes registration if USER was already given
  - Afterwards relays the change to everyone sharing a channel
- USER <user> <mode> <unused> <realname>: 462 once set
  - Completes registration if NICK was already given
- Welcome: 001-004, self MODE +wi, then the MOTD (375/372/376 or 422)

Channels:
- JOIN <#a,#b> | 0: creator gets chanop; 403 when the table is full
  - Members see the JOIN, the joiner gets 332 and 353 pages then 366
- PART <#a,#b> [reason]: 403 unknown, 442 not a member
- TOPIC <#c> [text]: 331/332 query, 442 and 482 on set
- NAMES [#c]: 353 pages and 366

Messages:
- PRIVMSG/NOTICE <target> <text>: 411, 412, 401
  - Channel: everyone but the sender; 404 for +n outsiders and +m
  - PRIVMSG to an away user returns 301
- WALLOPS <text>: 481 unless operator; to every +w user

Modes:
- MODE <nick> [modes]: 502 other user, 221 query, 501 unknown letters
  - w and i toggle, o can only be removed, a is ignored
- OPER <name> <password>: 491 bad name, 464 bad password, 381
- AWAY [text]: 306 set, 305 cleared

Queries:
- WHO [mask]: 352 per visible user, 315
- WHOIS <nick>: 311, 379/378 for operators, 319 pages, 312, 313, 301, 318
- LUSERS, MOTD, INFO, VERSION [server]: 402 for another server name

Session:
- PING <origin>: PONG; 409 without origin
- PONG <origin>: no reply; 409 without origin
- QUIT [reason]: "Quit: " + reason, default the nick
*/
