package s7

import "time"

// Option configures a TransportOptions value, following the functional-
// options pattern this engine's connection layer is modeled on.
type Option func(*TransportOptions)

// WithRack sets the target CPU's rack number.
func WithRack(rack int) Option {
	return func(o *TransportOptions) { o.Rack = rack }
}

// WithSlot sets the target CPU's slot number.
func WithSlot(slot int) Option {
	return func(o *TransportOptions) { o.Slot = slot }
}

// WithConnectionClass overrides the default PG connection class.
func WithConnectionClass(class ConnectionClass) Option {
	return func(o *TransportOptions) { o.ConnectionClass = class }
}

// WithRequestedPDULength overrides the default 480-byte PDU request.
func WithRequestedPDULength(n uint16) Option {
	return func(o *TransportOptions) { o.RequestedPDULength = n }
}

// WithConnectTimeout overrides the default TCP dial timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *TransportOptions) { o.ConnectTimeout = d }
}

// WithReadTimeout overrides the default response read deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(o *TransportOptions) { o.ReadTimeout = d }
}

// WithWriteTimeout overrides the default request write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *TransportOptions) { o.WriteTimeout = d }
}

// ConnectAddress is a convenience constructor over Connect: it builds a
// TransportOptions from address plus functional options, dials, and
// returns a ready Client.
func ConnectAddress(address string, opts ...Option) (*Client, error) {
	o := TransportOptions{Address: address}
	for _, opt := range opts {
		opt(&o)
	}
	return Connect(o)
}
