package activity

type publicationEvent struct {
	ContentURI   string           `json:"contentUri"`
	Payload      *activityContent `json:"payload,omitempty"`
	LastModified string           `json:"lastModified"`
}

type identifier struct {
	Authority       string `json:"authority"`
	IdentifierValue string `json:"identifierValue"`
}

type activityContent struct {
	ID                 string       `json:"uuid"`
	Title              string       `json:"title,omitempty"`
	Body               string       `json:"body,omitempty"`
	Identifiers        []identifier `json:"identifiers,omitempty"`
	FirstPublishedDate string       `json:"firstPublishedDate,omitempty"`
	Action             string       `json:"action,omitempty"`
	Actor              string       `json:"actor,omitempty"`
	Source             string       `json:"source,omitempty"`
	WebURL             string       `json:"webUrl,omitempty"`
	MediaURLs          []mediaURL   `json:"mediaUrls,omitempty"`
	RawContent         *rawContent  `json:"rawContent,omitempty"`
	Type               string       `json:"type,omitempty"`
	LastModified       string       `json:"lastModified,omitempty"`
	PublishReference   string       `json:"publishReference,omitempty"`
	Deleted            bool         `json:"deleted,omitempty"`
}

type mediaURL struct {
	URL      string `json:"url,omitempty"`
	Height   string `json:"height,omitempty"`
	Width    string `json:"width,omitempty"`
	Duration string `json:"duration,omitempty"`
	Type     string `json:"type,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type rawContent struct {
	ID   string `json:"uuid"`
	Body string `json:"body"`
}
