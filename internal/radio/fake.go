package radio

// Fake is an in-memory radio.
type Fake struct {
	On       bool
	Linked   bool
	Err      error
	Switches int
}

func (f *Fake) SetEnabled(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.On = on
	if !on {
		f.Linked = false
	}
	f.Switches++
	return nil
}

func (f *Fake) Enabled() (bool, error) { return f.On, f.Err }

func (f *Fake) Connected() (bool, error) { return f.On && f.Linked, f.Err }
