// matchup/state.go
package matchup

// State is the qualitative assessment of how a player is expected to fare
// against one opponent army.
type State string

const (
	None    State = "NONE" // no matchup recorded, never persisted
	Gamble  State = "GAMBLE"
	Unknown State = "UNKNOWN"
	Easy    State = "EASY"
	Win     State = "WIN"
	SWin    State = "S_WIN"
	SLoose  State = "S_LOOSE"
	Loose   State = "LOOSE"
	Help    State = "HELP"
)

// Order is the click-through cycle used when advancing a cell.
var Order = []State{None, Gamble, Unknown, Easy, Win, SWin, SLoose, Loose, Help}

// Descriptor is how a state is rendered by clients.
type Descriptor struct {
	Label      string `json:"label"`
	Background string `json:"bg"`
	Border     string `json:"border"`
	Text       string `json:"color"`
}

var descriptors = map[State]Descriptor{
	None:    {Label: "", Background: "transparent", Border: "#444", Text: "#f5f5f5"},
	Gamble:  {Label: "Gamble", Background: "#6a1b9a", Border: "#4a148c", Text: "#fff"},
	Unknown: {Label: "?", Background: "#616161", Border: "#424242", Text: "#fff"},
	Easy:    {Label: "Easy", Background: "#1b5e20", Border: "#1b5e20", Text: "#fff"},
	Win:     {Label: "Win", Background: "#2e7d32", Border: "#1b5e20", Text: "#fff"},
	SWin:    {Label: "S-Win", Background: "#66bb6a", Border: "#388e3c", Text: "#000"},
	SLoose:  {Label: "S-Loose", Background: "#fff176", Border: "#fdd835", Text: "#000"},
	Loose:   {Label: "Loose", Background: "#fb8c00", Border: "#ef6c00", Text: "#000"},
	Help:    {Label: "Help", Background: "#c62828", Border: "#b71c1c", Text: "#fff"},
}

// Midpoints of the score band each state stands for (HELP <5, LOOSE 5-8, ...).
var expectedScores = map[State]float64{
	Help:    3.0,
	Loose:   6.5,
	SLoose:  9.0,
	SWin:    11.0,
	Win:     13.5,
	Easy:    16.0,
	Unknown: 10.0,
	Gamble:  10.0,
}

// Valid reports whether s is one of the nine known states.
func (s State) Valid() bool {
	_, ok := descriptors[s]
	return ok
}

// Persistable reports whether s may be stored in a matrix. NONE is
// represented by absence.
func (s State) Persistable() bool {
	return s != None && s.Valid()
}

// Parse converts a raw string into a State.
func Parse(raw string) (State, bool) {
	s := State(raw)
	if !s.Valid() {
		return None, false
	}
	return s, true
}

// DescriptorOf is total: unknown states render like NONE.
func DescriptorOf(s State) Descriptor {
	if d, ok := descriptors[s]; ok {
		return d
	}
	return descriptors[None]
}

// ExpectedScore returns the expected game score for s. NONE and unknown
// states have no expectation.
func ExpectedScore(s State) (float64, bool) {
	v, ok := expectedScores[s]
	return v, ok
}

// ExpectedScorePtr is ExpectedScore shaped for JSON (nil = no expectation).
func ExpectedScorePtr(s State) *float64 {
	v, ok := expectedScores[s]
	if !ok {
		return nil
	}
	return &v
}

// Next advances s one step through Order, wrapping after HELP.
// Unrecognized input yields GAMBLE, not NONE.
func Next(s State) State {
	for i, o := range Order {
		if o == s {
			return Order[(i+1)%len(Order)]
		}
	}
	return Gamble
}
