package revshare

// Event names as observed by external callers.
const (
	EventPointerAdded   = "PaymentPointerAdded"
	EventPointerRemoved = "PaymentPointerRemoved"
)

// Event is a notification emitted after a successful mutation.
type Event interface {
	EventName() string
}

// PointerAdded is emitted after a successful Add.
type PointerAdded struct {
	Key         uint64
	Name        string
	Weight      uint64
	TotalWeight uint64 // Total after the add
}

// EventName implements Event.
func (PointerAdded) EventName() string { return EventPointerAdded }

// PointerRemoved is emitted after a successful Remove.
type PointerRemoved struct {
	Key         uint64
	Name        string
	Weight      uint64
	TotalWeight uint64 // Total after the remove
}

// EventName implements Event.
func (PointerRemoved) EventName() string { return EventPointerRemoved }

// Listener receives events synchronously, in registration order.
type Listener func(Event)
