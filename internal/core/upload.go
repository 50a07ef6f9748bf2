package core

import "strings"

var acceptedExtensions = []string{".doc", ".docx"}

// ValidateUpload accepts a file iff its lower-cased name ends in .doc or
// .docx. The media type is not consulted and the contents are never read.
func ValidateUpload(name, mediaType string) error {
	lower := strings.ToLower(name)
	for _, ext := range acceptedExtensions {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return &InvalidFileTypeError{Name: name}
}
