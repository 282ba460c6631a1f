package driver

// State is the externally observed state of a named container.
type State int

const (
	// StateAbsent means no container exists under the name.
	StateAbsent State = iota
	// StateStopped means the container exists but is not running.
	StateStopped
	// StateRunning means the container is running.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "absent"
	}
}

// Bind maps a host-side value to a container-side value. It is used for
// both volume and port bindings.
type Bind struct {
	Host      string
	Container string
}

// String renders the binding the way the runtime CLI expects it: "host:container".
func (b Bind) String() string {
	return b.Host + ":" + b.Container
}

// Link connects a container to another one under an alias.
type Link struct {
	Name  string
	Alias string
}

// String renders the link as "name:alias".
func (l Link) String() string {
	return l.Name + ":" + l.Alias
}

// RunOptions holds parameters for creating and starting a container.
type RunOptions struct {
	Image       string
	Name        string
	Daemon      bool
	Interactive bool
	AutoRemove  bool
	VolumesFrom []string
	Volumes     []Bind
	Ports       []Bind
	Links       []Link
	Env         []string // KEY=VALUE pairs
	Labels      map[string]string
	Cmd         []string
}
