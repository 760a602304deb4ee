// Package remote bridges a display to an MQTT broker or to websocket
// clients.
//
// A daemon owning the serial port registers the display as a controller
// named <type>/<id>. Its metadata is retained on <type>/<id>/meta, commands
// arrive on <type>/<id>/cmd and replies and events leave on <type>/<id>/msg.
// Every packet is a protobuf Typed envelope; replies carry the sequence of
// the command they answer. Over websocket each message is one packet.
package remote
