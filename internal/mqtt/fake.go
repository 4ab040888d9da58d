package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	Statuses     []StatusReport
	States       []StateChange
	SystemEvents []SystemEvent

	// Payloads holds every formatted payload in publish order.
	Payloads [][]byte

	// PublishError, if set, is returned by every publish.
	PublishError error

	Closed    bool
	Connected bool

	commands chan Command
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{commands: make(chan Command, commandQueue)}
}

func (f *FakePublisher) PublishStatus(r StatusReport) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatStatusPayload(r)
	if err != nil {
		return err
	}
	f.Statuses = append(f.Statuses, r)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishState(c StateChange) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatStatePayload(c)
	if err != nil {
		return err
	}
	f.States = append(f.States, c)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Send queues a command as if it arrived from the broker.
func (f *FakePublisher) Send(c Command) { f.commands <- c }

func (f *FakePublisher) Commands() <-chan Command { return f.commands }

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool { return f.Connected }
