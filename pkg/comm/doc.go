// Package comm provides the serial link to a PicoPaper display.
package comm

// The PicoPaper protocol is line oriented text over a serial port.
//
// Host to device, every byte is sent on its own as a data byte token,
// a ':' followed by two lowercase hex digits. A single '/' resets the
// receive state machine of the device and carries no data.
//
// Device to host, every message is one line framed as
//
//	~ACK#<payload>^   command completed, payload is command specific
//	~ERR#<payload>^   command failed, payload is the error text
//	~DBG#<payload>^   diagnostics, never an answer to a command
//
// Anything else is invalid and dropped by the reader.
//
// There is no sequence number on the wire. A Link delivers Ack and Error
// messages to a single handler and it is up to the caller to keep at most
// one command in flight.
