package docs

import (
	"github.com/pkg/browser"

	"doc-chat/internal/models"
)

// supported is the static catalogue of pre-indexed documents.
var supported = []models.SupportedDocument{
	{
		Name: "tata_punch_owner_manual.pdf",
		Link: "https://b-public.s3.us-west-2.amazonaws.com/document-extractor/tata_punch_owner_manual/tata_punch_owner_manual.pdf",
	},
	{
		Name: "Raspberry_short_vers.pdf",
		Link: "https://drive.google.com/file/d/1jUB6AWlNztOToOLJcWi0W4fkZ4yGyYU2/view?usp=drive_link",
	},
}

// Supported returns the catalogue of documents available for chat.
func Supported() []models.SupportedDocument {
	out := make([]models.SupportedDocument, len(supported))
	copy(out, supported)
	return out
}

// Find returns the catalogue entry with the given name.
func Find(name string) (models.SupportedDocument, bool) {
	for _, d := range supported {
		if d.Name == name {
			return d, true
		}
	}
	return models.SupportedDocument{}, false
}

// Preview opens the document's external link in the default browser.
func Preview(doc models.SupportedDocument) error {
	return browser.OpenURL(doc.Link)
}
