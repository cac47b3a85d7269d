package models

// Media is an uploaded image or video handed to the prompt extractor.
type Media struct {
	Name     string
	MIMEType string
	Data     []byte
}
