package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	Language      string
	Dictionary    string
	Dictionary2   string
	FreqList      string
	AudioSource   string
	DataDir       string
	Serve         bool
	ExportLookups string
	ExportNotes   string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Language:   "en",
		Dictionary: "Wiktionary (English)",
	}
}
