package repl

// Environment variable names the child process reads to reach back to the
// autocomplete service. These names are a wire contract; do not change them.
const (
	EnvAutocompletePort = "SUBLIMEREPL_AC_PORT"
	EnvAutocompleteIP   = "SUBLIMEREPL_AC_IP"
)

// acPortDisabled is the port value children see when no autocomplete server
// is listening. Clients parse it loosely, so it stays a plain word.
const acPortDisabled = "None"

// CompletionRequest describes one completion query from the host loop.
type CompletionRequest struct {
	WholeLine   string
	PosInLine   int
	Prefix      string
	WholePrefix string
	Locations   []int
}

// Completion is a single completion candidate.
type Completion struct {
	Display string
	Insert  string
}

// Completer is the autocomplete service collaborator. The core never
// implements it; it starts the service, injects its address into the child
// environment, and forwards completion queries.
type Completer interface {
	// Start brings the service up. Called once per launch when enabled.
	Start() error

	// Port returns the listening port, false while unbound.
	Port() (int, bool)

	// Connected reports whether the child process has attached.
	Connected() bool

	// Complete resolves completion candidates for a query.
	Complete(req CompletionRequest) ([]Completion, error)
}
