package irc

// Numeric replies used by the command handlers
const (
	RPL_WELCOME       = "001"
	RPL_YOURHOST      = "002"
	RPL_CREATED       = "003"
	RPL_MYINFO        = "004"
	RPL_UMODEIS       = "221"
	RPL_LUSERCLIENT   = "251"
	RPL_LUSEROP       = "252"
	RPL_LUSERCHANNELS = "254"
	RPL_LUSERME       = "255"
	RPL_AWAY          = "301"
	RPL_UNAWAY        = "305"
	RPL_NOWAWAY       = "306"
	RPL_WHOISUSER     = "311"
	RPL_WHOISSERVER   = "312"
	RPL_WHOISOPERATOR = "313"
	RPL_ENDOFWHO      = "315"
	RPL_ENDOFWHOIS    = "318"
	RPL_WHOISCHANNELS = "319"
	RPL_NOTOPIC       = "331"
	RPL_TOPIC         = "332"
	RPL_VERSION       = "351"
	RPL_WHOREPLY      = "352"
	RPL_NAMREPLY      = "353"
	RPL_ENDOFNAMES    = "366"
	RPL_INFO          = "371"
	RPL_MOTD          = "372"
	RPL_ENDOFINFO     = "374"
	RPL_MOTDSTART     = "375"
	RPL_ENDOFMOTD     = "376"
	RPL_WHOISHOST     = "378"
	RPL_WHOISMODES    = "379"
	RPL_YOUREOPER     = "381"

	ERR_NOSUCHNICK       = "401"
	ERR_NOSUCHSERVER     = "402"
	ERR_NOSUCHCHANNEL    = "403"
	ERR_CANNOTSENDTOCHAN = "404"
	ERR_NOORIGIN         = "409"
	ERR_NORECIPIENT      = "411"
	ERR_NOTEXTTOSEND     = "412"
	ERR_UNKNOWNCOMMAND   = "421"
	ERR_NOMOTD           = "422"
	ERR_NONICKNAMEGIVEN  = "431"
	ERR_ERRONEUSNICKNAME = "432"
	ERR_NICKNAMEINUSE    = "433"
	ERR_NOTONCHANNEL     = "442"
	ERR_NOTREGISTERED    = "451"
	ERR_NEEDMOREPARAMS   = "461"
	ERR_ALREADYREGISTRED = "462"
	ERR_PASSWDMISMATCH   = "464"
	ERR_NOPRIVILEGES     = "481"
	ERR_CHANOPRIVSNEEDED = "482"
	ERR_NOOPERHOST       = "491"
	ERR_UMODEUNKNOWNFLAG = "501"
	ERR_USERSDONTMATCH   = "502"
)
