package events

// Filter decides whether an event should reach a subscriber.
type Filter func(Event) bool

// WithType matches events of a specific type.
func WithType(typ Type) Filter {
	return func(e Event) bool { return e.Type() == typ }
}

// WithTypes matches events of any of the given types.
func WithTypes(types ...Type) Filter {
	set := make(map[Type]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return func(e Event) bool { return set[e.Type()] }
}

// WithDeviceID matches DeviceEvents for a specific local device id.
func WithDeviceID(localID string) Filter {
	return func(e Event) bool {
		d, ok := e.(DeviceEvent)
		return ok && d.LocalID == localID
	}
}

// Not negates a filter.
func Not(filter Filter) Filter {
	return func(e Event) bool { return !filter(e) }
}
