package payload

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

const (
	payloadTag  = "payload"
	titleTag    = "title"
	bodyTag     = "body"
	mediaURLTag = "mediaURL"
	rawTag      = "raw"

	heightAttr   = "height"
	widthAttr    = "width"
	durationAttr = "duration"
	typeAttr     = "type"
	mimeTypeAttr = "mimeType"

	noneText = "<nil>"
)

// Payload holds the payload portion of an activity: title, body, media references and
// the raw content of the activity. Raw content is only ever held compressed and base64
// encoded; use ReadRaw and WriteRaw to access it.
type Payload struct {
	Title     *string
	Body      *string
	MediaURLs []*MediaURL

	raw *string
}

// NewPayload builds a payload. A non-nil raw is compressed and encoded before it is stored.
func NewPayload(title, body *string, mediaURLs []*MediaURL, raw []byte) (*Payload, error) {
	p := &Payload{
		Title:     title,
		Body:      body,
		MediaURLs: mediaURLs,
	}
	if err := p.WriteRaw(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadRaw returns the decoded and decompressed raw content, or nil if none was set.
// Decoding and decompression errors are returned as they are.
func (p *Payload) ReadRaw() ([]byte, error) {
	if p.raw == nil {
		return nil, nil
	}
	return decodeAndDecompress(*p.raw)
}

// WriteRaw replaces the raw content. nil clears it.
func (p *Payload) WriteRaw(raw []byte) error {
	if raw == nil {
		p.setEncodedRaw(nil)
		return nil
	}
	encoded, err := compressAndEncode(raw)
	if err != nil {
		return err
	}
	p.setEncodedRaw(&encoded)
	return nil
}

// setEncodedRaw stores an already encoded representation as is.
func (p *Payload) setEncodedRaw(encoded *string) {
	p.raw = encoded
}

// FromXMLNode populates the payload from a payload element, overwriting every field.
// Missing children clear the matching field.
//
// The raw element text is stored without being decoded, it is assumed to already be
// base64(gzip(content)) as written by ToXMLNode. Text that is not in that form is only
// noticed on the next ReadRaw.
func (p *Payload) FromXMLNode(node *etree.Element) {
	if node == nil {
		return
	}

	p.Title = childText(node, titleTag)
	p.Body = childText(node, bodyTag)

	// no match still yields an empty, non-nil list
	mediaURLNodes := node.FindElements(mediaURLTag)
	p.MediaURLs = make([]*MediaURL, 0, len(mediaURLNodes))
	for _, n := range mediaURLNodes {
		p.MediaURLs = append(p.MediaURLs, mediaURLFromNode(n))
	}

	p.setEncodedRaw(childText(node, rawTag))
}

// ToXMLNode returns a new payload element. The payload itself is left untouched.
func (p *Payload) ToXMLNode() *etree.Element {
	payloadNode := etree.NewElement(payloadTag)

	if p.Title != nil {
		payloadNode.CreateElement(titleTag).SetText(*p.Title)
	}

	if p.Body != nil {
		payloadNode.CreateElement(bodyTag).SetText(*p.Body)
	}

	for _, m := range p.MediaURLs {
		if m == nil {
			continue
		}
		mediaURLNode := payloadNode.CreateElement(mediaURLTag)
		if m.Value != nil {
			mediaURLNode.SetText(*m.Value)
		}
		for _, attr := range m.attributes() {
			if attr.value != nil {
				mediaURLNode.CreateAttr(attr.name, *attr.value)
			}
		}
	}

	if p.raw != nil {
		payloadNode.CreateElement(rawTag).SetText(*p.raw)
	}

	return payloadNode
}

func (p *Payload) String() string {
	mediaURLs := noneText
	if p.MediaURLs != nil {
		parts := make([]string, 0, len(p.MediaURLs))
		for _, m := range p.MediaURLs {
			parts = append(parts, m.String())
		}
		mediaURLs = "[" + strings.Join(parts, ", ") + "]"
	}

	raw := noneText
	content, err := p.ReadRaw()
	switch {
	case err != nil:
		raw = fmt.Sprintf("<unreadable raw: %v>", err)
	case content != nil:
		raw = string(content)
	}

	return "[" + textOrNone(p.Title) +
		", " + textOrNone(p.Body) +
		", " + mediaURLs +
		", " + raw +
		"]"
}

func mediaURLFromNode(n *etree.Element) *MediaURL {
	return &MediaURL{
		Value:    text(n),
		Height:   attrValue(n, heightAttr),
		Width:    attrValue(n, widthAttr),
		Duration: attrValue(n, durationAttr),
		Type:     attrValue(n, typeAttr),
		MimeType: attrValue(n, mimeTypeAttr),
	}
}

func childText(node *etree.Element, tag string) *string {
	child := node.FindElement(tag)
	if child == nil {
		return nil
	}
	return text(child)
}

// text follows the tree's notion of text: an element without character data has none.
func text(e *etree.Element) *string {
	t := e.Text()
	if t == "" {
		return nil
	}
	return &t
}

func attrValue(e *etree.Element, name string) *string {
	attr := e.SelectAttr(name)
	if attr == nil {
		return nil
	}
	v := attr.Value
	return &v
}

func textOrNone(s *string) string {
	if s == nil {
		return noneText
	}
	return *s
}
