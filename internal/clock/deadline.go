package clock

// Deadline is a single absolute timestamp polled by the tick loop.
// The zero value is unset. Cancelling is Disarm.
type Deadline struct {
	at Millis
}

// Arm sets the deadline to now+after.
func (d *Deadline) Arm(now, after Millis) {
	d.at = now + after
}

// Disarm resets the deadline to the unset sentinel.
func (d *Deadline) Disarm() {
	d.at = 0
}

// Armed reports whether the deadline is set.
func (d *Deadline) Armed() bool {
	return d.at != 0
}

// At returns the absolute deadline, or 0 when unset.
func (d *Deadline) At() Millis {
	return d.at
}

// Due reports whether the deadline is set and strictly in the past.
func (d *Deadline) Due(now Millis) bool {
	return d.at != 0 && d.at < now
}

// Remaining returns the time left until the deadline, or 0 when unset or passed.
func (d *Deadline) Remaining(now Millis) Millis {
	if d.at == 0 || d.at <= now {
		return 0
	}
	return d.at - now
}
