package dto

// Socket event names. Connected clients match on these strings verbatim,
// so they are part of the wire contract.
const (
	SocketOnlineUsers       = "OnlineUser"
	SocketSendMessage       = "sendMessage"
	SocketUpdateLastMessage = "updateLastMessage"
	SocketStartTyping       = "StartTyping"
	SocketStopTyping        = "StopTypingNow"
	SocketSeenMessages      = "seenMessages"
	SocketLastSeenUpdate    = "liveLastSeenUpdate"
	SocketNotification      = "notificationSocket"
)

// Inbound event names sent by clients over the socket.
const (
	SocketInboundTyping     = "typing"
	SocketInboundStopTyping = "stopTyping"
	SocketInboundMarkSeen   = "markMessagesAsSeen"
)
