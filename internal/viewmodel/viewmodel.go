package viewmodel

// NameEntry is one row of the editable name list.
type NameEntry struct {
	Index int
	Name  string
	Color string
}

// HomePage holds data for the name editing page.
type HomePage struct {
	Title  string
	Names  []NameEntry
	Winner string
	// WinnerListed reports whether the predetermined winner is on the list.
	WinnerListed bool
	Error        string
	MaxLength    int
}

// SegmentView is one slice of the SVG wheel in wheel-local coordinates.
type SegmentView struct {
	Index  int
	Label  string
	Color  string
	Path   string
	LabelX float64
	LabelY float64
	// LabelAngle rotates the label to run along the slice's radius.
	LabelAngle float64
	Winner     bool
}

// WheelFigure holds data for the animated wheel fragment.
type WheelFigure struct {
	WheelID        string
	Segments       []SegmentView
	FullCircle     bool
	Empty          bool
	PointerPath    string
	StartRotation  float64
	TargetRotation float64
	// DisplayRotation is the eased rotation at render time.
	DisplayRotation float64
	StartedMs       int64
	DurationMs      int64
	Spinning        bool
	Key             string
}

// WheelStatus holds data for the spin controls and result panel.
type WheelStatus struct {
	WheelID   string
	Phase     string
	Spinning  bool
	CanSpin   bool
	Winner    string
	NameCount int
	Spins     int
	SettlesMs int64
	Error     string
}

// WheelPage holds data for the wheel view page.
type WheelPage struct {
	Title    string
	WheelID  string
	ShareURL string
	Figure   WheelFigure
	Status   WheelStatus
}
