// Package ipc implements the netscreend control socket: one newline-delimited
// JSON request and one response per connection.
package ipc

// Control commands understood by the daemon.
const (
	CommandStatus  = "status"
	CommandRestart = "restart"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK       bool   `json:"ok"`
	State    string `json:"state,omitempty"`
	Client   string `json:"client,omitempty"`
	Listen   string `json:"listen,omitempty"`
	Since    string `json:"since,omitempty"`
	Restarts int64  `json:"restarts,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
