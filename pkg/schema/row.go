package schema

// Row is one entry of the row-oriented parameter table consumed by the
// registry loader. Every column is raw text; decoding into typed values
// happens in pkg/params so loaders stay trivial I/O.
type Row struct {
	Key         string
	Alias       string
	Group       string
	Default     string
	Unit        string
	Description string
	GUIType     string
	GUIArgs     string
}
