package ws

// Event names sent to clients.
const (
	EventOnlineUsers  = "getOnlineUsers"
	EventNewMessage   = "newMessage"
	EventNotification = "notification"
)

// Envelope is the JSON frame written to the socket.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Conn is anything that can receive events for one user. The websocket
// Client implements it; tests use in-memory fakes.
type Conn interface {
	Emit(event string, data any) error
}
