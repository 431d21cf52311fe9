package irc

// pageCursor tracks how far a paginated listing has progressed. Each
// listing loop owns its own cursor, so listings never interfere.
type pageCursor struct {
	next int
}

// pageBuf fills the server's scratch line with space separated entries
// up to limit bytes
type pageBuf struct {
	buf   []byte
	limit int
	count int
}

func (s *Server) newPage(limit int) pageBuf {
	return pageBuf{buf: s.page[:0], limit: limit}
}

// add appends one entry, optionally role-marked and prefixed, and
// reports false if it would not fit
func (p *pageBuf) add(role byte, prefix, text string) bool {
	n := len(prefix) + len(text)
	if role != 0 {
		n++
	}
	if p.count > 0 {
		n++
	}
	if len(p.buf)+n > p.limit {
		return false
	}

	if p.count > 0 {
		p.buf = append(p.buf, ' ')
	}
	if role != 0 {
		p.buf = append(p.buf, role)
	}
	p.buf = append(p.buf, prefix...)
	p.buf = append(p.buf, text...)
	p.count++
	return true
}

// pageBudget is what remains of the line limit once the numeric's fixed
// part (with an empty trailing parameter) is accounted for
func (s *Server) pageBudget(u *User, code string, params ...string) int {
	header := s.format(s.numericMsg(u, code, append(params, "")...))
	if header == nil {
		return 0
	}
	return s.cfg.Limits.Line - (len(header) - 2)
}

// memberPage lists the next run of c's members that fits in limit bytes.
// Invisible users are included only when showInvisible is set. It
// returns false, and rewinds cur, once nothing more was written.
func (s *Server) memberPage(c *Channel, cur *pageCursor, limit int, showInvisible bool) (string, bool) {
	page := s.newPage(limit)
	for ; cur.next < len(s.users); cur.next++ {
		u := &s.users[cur.next]
		if !u.connected() || !c.joined(u) {
			continue
		}
		if !showInvisible && u.flags.Has(UserInvisible) {
			continue
		}
		if !page.add(c.members[u.slot].prefix(), "", u.nick) {
			break
		}
	}
	return page.finish(cur)
}

// channelPage lists the next run of the channels u has joined
func (s *Server) channelPage(u *User, cur *pageCursor, limit int) (string, bool) {
	page := s.newPage(limit)
	for ; cur.next < len(s.channels); cur.next++ {
		c := &s.channels[cur.next]
		if c.count == 0 || !c.joined(u) {
			continue
		}
		if !page.add(c.members[u.slot].prefix(), "#", c.name) {
			break
		}
	}
	return page.finish(cur)
}

func (p *pageBuf) finish(cur *pageCursor) (string, bool) {
	if p.count == 0 {
		cur.next = 0
		return "", false
	}
	return string(p.buf), true
}
