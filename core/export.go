package core

// Heading is one entry of an exported record's table of contents.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// Link is a hyperlink found in a record's content.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Section is a heading-delimited part of a record's content.
type Section struct {
	Heading string `json:"heading"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
}

// ExportContent holds the text forms of a record's body.
type ExportContent struct {
	Text     string    `json:"text"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

// RecordExport is the JSON export of a single record.
type RecordExport struct {
	Record          Record        `json:"record"`
	Content         ExportContent `json:"content"`
	TableOfContents []Heading     `json:"table_of_contents"`
	Links           []Link        `json:"links"`
}
