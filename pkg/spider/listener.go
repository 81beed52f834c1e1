package spider

// Listener observes pin selection. Calls are delivered synchronously on the
// host's event loop.
type Listener interface {
	// PinSelected reports a selected member. c is the open cluster the member
	// was picked from, or nil for an unclustered marker.
	PinSelected(m *Member, c *Cluster)

	// PinUnselected reports that the current selection was dropped because a
	// cluster is being opened.
	PinUnselected()
}

// ListenerFuncs adapts plain functions to [Listener]. Nil fields are skipped.
type ListenerFuncs struct {
	Selected   func(m *Member, c *Cluster)
	Unselected func()
}

func (f ListenerFuncs) PinSelected(m *Member, c *Cluster) {
	if f.Selected != nil {
		f.Selected(m, c)
	}
}

func (f ListenerFuncs) PinUnselected() {
	if f.Unselected != nil {
		f.Unselected()
	}
}

type listenerEntry struct {
	id int
	l  Listener
}
