// Package websocket is the live transport between joined players and their
// town controller.
//
// Each connection is bound to one resolved player session. The per-connection
// Client registers itself with the town as a listener: controller events are
// serialized onto a buffered send channel and drained to the wire by the
// write pump, so a slow consumer can never block the town. Inbound messages
// (movement, car actions, race actions) are translated into controller calls
// by the read pump. When the socket drops, the client unsubscribes and
// destroys its session; when the town itself closes, the client flushes the
// townClosing event and disconnects.
package websocket
