package grammar

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Repr   string `json:"repr,omitempty"`
}

type NonTerminal struct {
	Number   int      `json:"number"`
	Name     string   `json:"name"`
	Origin   string   `json:"origin,omitempty"`
	Base     string   `json:"base,omitempty"`
	First    []string `json:"first"`
	Nullable bool     `json:"nullable"`
	Follow   []string `json:"follow"`
}

type Production struct {
	Number      int      `json:"number"`
	LHS         string   `json:"lhs"`
	Alternative int      `json:"alternative"`
	RHS         []string `json:"rhs"`
	First       []string `json:"first"`
	Nullable    bool     `json:"nullable"`
}

type Conflict struct {
	Kind         string   `json:"kind"`
	NonTerminal  string   `json:"non_terminal"`
	Alternatives []int    `json:"alternatives"`
	Symbols      []string `json:"symbols"`
}

type Report struct {
	Start         string         `json:"start"`
	BacktrackFree bool           `json:"backtrack_free"`
	Terminals     []*Terminal    `json:"terminals"`
	NonTerminals  []*NonTerminal `json:"non_terminals"`
	Productions   []*Production  `json:"productions"`
	Conflicts     []*Conflict    `json:"conflicts"`
}
