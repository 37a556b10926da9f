package payload

import "strings"

// MediaURL is a media reference attached to an activity payload. All fields are
// optional text; numeric looking attributes such as height or duration are never parsed.
type MediaURL struct {
	Value    *string
	Height   *string
	Width    *string
	Duration *string
	Type     *string
	MimeType *string
}

func (m *MediaURL) String() string {
	if m == nil {
		return noneText
	}
	return "[" + strings.Join([]string{
		textOrNone(m.Value),
		textOrNone(m.Height),
		textOrNone(m.Width),
		textOrNone(m.Duration),
		textOrNone(m.Type),
		textOrNone(m.MimeType),
	}, ", ") + "]"
}

func (m *MediaURL) attributes() []mediaURLAttribute {
	return []mediaURLAttribute{
		{heightAttr, m.Height},
		{widthAttr, m.Width},
		{durationAttr, m.Duration},
		{typeAttr, m.Type},
		{mimeTypeAttr, m.MimeType},
	}
}

type mediaURLAttribute struct {
	name  string
	value *string
}
