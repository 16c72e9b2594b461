package analysis

// Row is one source record keyed by column name.
type Row map[string]any

// RecordSet is a list of rows sharing a column set. Columns carries the
// source column order; keys that only appear in rows are appended sorted.
type RecordSet struct {
	Columns []string
	Rows    []Row
}

// Sheet is one named record list of a multi-sheet source.
type Sheet struct {
	Name    string
	Records RecordSet
}

// TableExtract is a table lifted out of a document. The first row is the header.
type TableExtract struct {
	Page int
	Rows [][]string
}

// Document is extracted free text plus any tables found alongside it.
type Document struct {
	Text   string
	Tables []TableExtract
}

// Input is what the document extractor hands to the pipeline. Exactly one of
// Records, Sheets or Document must be set.
type Input struct {
	// FileType names the source format (csv, excel, json, pdf, docx, text).
	FileType string
	Records  *RecordSet
	Sheets   []Sheet
	Document *Document
}
