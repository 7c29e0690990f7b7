package engine

// PhaseSummary reports one phase's outcome.
type PhaseSummary struct {
	Phase      Phase
	State      PhaseState
	Resumed    bool
	Updated    int
	Suppressed int
	Blocked    int
	Takeovers  int
}

// Summary reports one full run.
type Summary struct {
	RunID      string
	Library    string
	Items      int
	Prior      float64
	PriorCount int
	Epsilon    float64
	DryRun     bool
	Phases     []PhaseSummary
}

// TotalUpdated is the total write count across phases.
func (s *Summary) TotalUpdated() int {
	var n int
	for _, p := range s.Phases {
		n += p.Updated
	}
	return n
}

// TotalSuppressed is the total drift-suppressed count across phases.
func (s *Summary) TotalSuppressed() int {
	var n int
	for _, p := range s.Phases {
		n += p.Suppressed
	}
	return n
}
