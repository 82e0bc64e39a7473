// Package smtp provides the outbound mail transport.
package smtp

import "io"

// Client is the subset of an SMTP session used by the sender service.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface abstracts connection setup for the sender service.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
