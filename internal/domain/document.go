package domain

// Document is a labeled text owned by exactly one category
type Document struct {
	id         DocumentID
	text       DocumentText
	categoryID CategoryID
}

// NewDocument creates a Document belonging to categoryID
func NewDocument(id DocumentID, text DocumentText, categoryID CategoryID) *Document {
	return &Document{id: id, text: text, categoryID: categoryID}
}

func (d *Document) ID() DocumentID { return d.id }
func (d *Document) Text() DocumentText { return d.text }
func (d *Document) CategoryID() CategoryID { return d.categoryID }

// UpdateText replaces the document text
func (d *Document) UpdateText(text DocumentText) {
	d.text = text
}
