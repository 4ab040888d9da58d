package mqtt

// outgoing is a serialized message held for replay after reconnection.
type outgoing struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages published while disconnected.
// When full the oldest message is overwritten. Not safe for concurrent use.
type outbox struct {
	msgs    []outgoing
	head    int // next write position
	count   int
	dropped int // overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{msgs: make([]outgoing, capacity)}
}

// push queues msg and reports whether an older message was overwritten.
func (o *outbox) push(msg outgoing) bool {
	full := o.count == len(o.msgs)
	o.msgs[o.head] = msg
	o.head = (o.head + 1) % len(o.msgs)
	if full {
		o.dropped++
		return true
	}
	o.count++
	return false
}

// drain returns the queued messages oldest first and the number dropped.
func (o *outbox) drain() ([]outgoing, int) {
	if o.count == 0 {
		return nil, 0
	}
	capacity := len(o.msgs)
	out := make([]outgoing, o.count)
	start := (o.head - o.count + capacity) % capacity
	for i := range out {
		out[i] = o.msgs[(start+i)%capacity]
	}
	dropped := o.dropped
	o.count, o.head, o.dropped = 0, 0, 0
	return out, dropped
}

func (o *outbox) len() int { return o.count }
