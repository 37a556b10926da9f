package activity

import (
	"fmt"

	"github.com/Financial-Times/upp-activity-payload-mapper/payload"
	"github.com/beevik/etree"
)

const (
	activityTag   = "activity"
	atTag         = "at"
	actionTag     = "action"
	activityIDTag = "activityID"
	urlTag        = "URL"
	sourceTag     = "source"
	actorTag      = "actor"
	payloadTag    = "payload"
)

// Activity is a social activity record as delivered by the activity feed, the envelope
// around a payload.
type Activity struct {
	At         *string
	Action     *string
	ActivityID *string
	URL        *string
	Source     *string
	Actor      *string
	Payload    *payload.Payload
}

// ParseActivity reads an activity document.
func ParseActivity(body string) (*Activity, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("activity document has no root element")
	}
	if root.Tag != activityTag {
		return nil, fmt.Errorf("unexpected root element [%s], expected [%s]", root.Tag, activityTag)
	}

	a := &Activity{}
	a.FromXMLNode(root)
	return a, nil
}

func (a *Activity) FromXMLNode(node *etree.Element) {
	if node == nil {
		return
	}

	a.At = childText(node, atTag)
	a.Action = childText(node, actionTag)
	a.ActivityID = childText(node, activityIDTag)
	a.URL = childText(node, urlTag)
	a.Source = childText(node, sourceTag)
	a.Actor = childText(node, actorTag)

	payloadNode := node.FindElement(payloadTag)
	if payloadNode == nil {
		a.Payload = nil
		return
	}
	a.Payload = &payload.Payload{}
	a.Payload.FromXMLNode(payloadNode)
}

func (a *Activity) ToXMLNode() *etree.Element {
	node := etree.NewElement(activityTag)
	for _, child := range []struct {
		tag   string
		value *string
	}{
		{atTag, a.At},
		{actionTag, a.Action},
		{activityIDTag, a.ActivityID},
		{urlTag, a.URL},
		{sourceTag, a.Source},
		{actorTag, a.Actor},
	} {
		if child.value != nil {
			node.CreateElement(child.tag).SetText(*child.value)
		}
	}

	if a.Payload != nil {
		node.AddChild(a.Payload.ToXMLNode())
	}
	return node
}

// String serialises the activity back to an XML document.
func (a *Activity) String() string {
	doc := etree.NewDocument()
	doc.SetRoot(a.ToXMLNode())
	s, err := doc.WriteToString()
	if err != nil {
		return fmt.Sprintf("<unprintable activity: %v>", err)
	}
	return s
}

func childText(node *etree.Element, tag string) *string {
	child := node.FindElement(tag)
	if child == nil {
		return nil
	}
	t := child.Text()
	if t == "" {
		return nil
	}
	return &t
}
