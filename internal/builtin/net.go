// net.go adapts the teacher's internal/vm/network_websocket*.go (in
// turn built on internal/network/websocket.go's WebSocketConn) into a
// single LIBOBJECT class: connect/send/receive/close on a
// *websocket.Conn wrapped as a Native. The teacher keeps a map of
// named connections behind a mutex and a background reader goroutine
// feeding a channel; this keeps the same reader-goroutine-plus-
// buffered-channel shape but drops the global registry, since Mint's
// object model already gives each Socket instance its own identity.
package builtin

import (
	"time"

	"github.com/gorilla/websocket"

	"mint/internal/bytecode"
	"mint/internal/class"
	"mint/internal/value"
)

const nativeKindSocket = "socket"

type socketConn struct {
	conn     *websocket.Conn
	inbound  chan []byte
	closed   chan struct{}
}

// RegisterNet installs the `Socket` library class under pkg: `new
// Socket(url)` dials, `.send(text)` writes a text frame, `.recv()`
// drains the next buffered inbound message (or "" if none yet),
// `.close()` tears the connection down.
func (r *Registry) RegisterNet(pkg *class.Package) {
	cl, slot := r.NewLibObjectClass(pkg, "Socket")

	r.CreateBuiltinOperator(cl, class.OpNew, 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		url, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		dialer := websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		conn, _, err := dialer.Dial(url, nil)
		if err != nil {
			return nil, typeMismatch("websocket dial failed: " + err.Error())
		}
		sc := &socketConn{conn: conn, inbound: make(chan []byte, 100), closed: make(chan struct{})}
		go sc.readLoop()
		if err := setSelfNative(ctx, slot, &Native{Kind: nativeKindSocket, Value: sc}); err != nil {
			return nil, err
		}
		return nil, nil
	})

	r.CreateBuiltinMember(cl, "send", 1, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindSocket)
		if err != nil {
			return nil, err
		}
		msg, err := stringArg(ctx, 0)
		if err != nil {
			return nil, err
		}
		sc := n.Value.(*socketConn)
		if err := sc.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return nil, typeMismatch("websocket send failed: " + err.Error())
		}
		return r.Boolean(true), nil
	})

	r.CreateBuiltinMember(cl, "recv", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindSocket)
		if err != nil {
			return nil, err
		}
		sc := n.Value.(*socketConn)
		select {
		case msg := <-sc.inbound:
			return r.String(string(msg)), nil
		default:
			return r.String(""), nil
		}
	})

	r.CreateBuiltinMember(cl, "close", 0, func(ctx bytecode.HostContext) (*value.Data, error) {
		n, err := selfNative(ctx, slot, nativeKindSocket)
		if err != nil {
			return nil, err
		}
		sc := n.Value.(*socketConn)
		close(sc.closed)
		return r.Boolean(sc.conn.Close() == nil), nil
	})
}

func (sc *socketConn) readLoop() {
	for {
		_, data, err := sc.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case sc.inbound <- data:
		case <-sc.closed:
			return
		}
	}
}
