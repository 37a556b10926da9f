package activity

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Financial-Times/go-logger/v2"
	"github.com/Financial-Times/kafka-client-go/v4"
	"github.com/Financial-Times/upp-activity-payload-mapper/payload"
	uuidUtils "github.com/Financial-Times/uuid-utils-go"
	"github.com/google/uuid"
)

const (
	activityType           = "Activity"
	activityContentURIBase = "http://activity-payload-mapper.svc.ft.com/activity/model/"
	activityAuthority      = "http://api.ft.com/system/GNIP"
	dateFormat             = "2006-01-02T15:04:05.000Z0700"
	deleteAction           = "delete"
	rawContentSalt         = "activityraw"
)

type ActivityMapper struct {
	log *logger.UPPLogger
}

func NewActivityMapper(log *logger.UPPLogger) ActivityMapper {
	return ActivityMapper{log: log}
}

func (m ActivityMapper) TransformMsg(msg kafka.FTMessage) (kafka.FTMessage, string, error) {
	tid := msg.Headers["X-Request-Id"]
	if tid == "" {
		return kafka.FTMessage{}, "", errors.New("header X-Request-Id not found in kafka message headers. Skipping message")
	}

	lastModified := msg.Headers["Message-Timestamp"]
	if lastModified == "" {
		lastModified = time.Now().Format(dateFormat)
	}

	a, err := ParseActivity(msg.Body)
	if err != nil {
		return kafka.FTMessage{}, "", fmt.Errorf("activity XML couldn't be parsed, skipping invalid XML: %w", err)
	}

	if a.ActivityID == nil {
		return kafka.FTMessage{}, "", errors.New("could not extract activity ID from activity message. Skipping message")
	}
	activityID := *a.ActivityID

	contentUUID := getContentUUID(activityID)
	contentURI := activityContentURIBase + contentUUID

	if !isPublishEvent(a) {
		content := &activityContent{ID: contentUUID, Deleted: true}
		deleteMsg, err := m.buildAndMarshalPublicationEvent(content, contentURI, lastModified, tid)
		return deleteMsg, contentUUID, err
	}

	content := m.getActivityContent(a, contentUUID, tid, lastModified)
	publishMsg, err := m.buildAndMarshalPublicationEvent(content, contentURI, lastModified, tid)
	return publishMsg, contentUUID, err
}

func (m ActivityMapper) getActivityContent(a *Activity, contentUUID, tid, lastModified string) *activityContent {
	content := &activityContent{
		ID: contentUUID,
		Identifiers: []identifier{{
			Authority:       activityAuthority,
			IdentifierValue: *a.ActivityID,
		}},
		FirstPublishedDate: valueOf(a.At),
		Action:             valueOf(a.Action),
		Actor:              valueOf(a.Actor),
		Source:             valueOf(a.Source),
		WebURL:             valueOf(a.URL),
		Type:               activityType,
		LastModified:       lastModified,
		PublishReference:   tid,
	}

	p := a.Payload
	if p == nil {
		m.log.WithTransactionID(tid).WithUUID(contentUUID).Warn("Activity has no payload, mapping envelope only")
		return content
	}

	content.Title = valueOf(p.Title)
	content.Body = getBody(p, m.log, tid, contentUUID)
	content.MediaURLs = getMediaURLs(p.MediaURLs)

	raw, err := getRawContent(p, contentUUID)
	if err != nil {
		m.log.WithTransactionID(tid).WithUUID(contentUUID).WithError(err).Warn("Raw content of activity payload will be skipped")
	}
	content.RawContent = raw

	return content
}

func getBody(p *payload.Payload, log *logger.UPPLogger, tid, contentUUID string) string {
	body := valueOf(p.Body)
	if body == "" {
		return ""
	}
	if !isValidXHTML(body) {
		log.WithTransactionID(tid).WithUUID(contentUUID).Warn("Activity payload has invalid XHTML body and it will be skipped")
		return ""
	}
	return body
}

func getMediaURLs(mediaURLs []*payload.MediaURL) []mediaURL {
	var result []mediaURL
	for _, m := range mediaURLs {
		if m == nil {
			continue
		}
		result = append(result, mediaURL{
			URL:      valueOf(m.Value),
			Height:   valueOf(m.Height),
			Width:    valueOf(m.Width),
			Duration: valueOf(m.Duration),
			Type:     valueOf(m.Type),
			MimeType: valueOf(m.MimeType),
		})
	}
	return result
}

// getRawContent fails for raw text that was not written as base64 gzip content, which
// is possible for payloads read from XML.
func getRawContent(p *payload.Payload, contentUUID string) (*rawContent, error) {
	raw, err := p.ReadRaw()
	if err != nil {
		return nil, fmt.Errorf("could not decode raw content: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	if !utf8.Valid(raw) {
		return nil, errors.New("raw content is not valid UTF-8 text")
	}

	rawUUID, err := deriveRawContentUUID(contentUUID)
	if err != nil {
		return nil, err
	}
	return &rawContent{ID: rawUUID, Body: string(raw)}, nil
}

func (m ActivityMapper) buildAndMarshalPublicationEvent(content *activityContent, contentURI, lastModified, tid string) (kafka.FTMessage, error) {
	e := publicationEvent{
		ContentURI:   contentURI,
		Payload:      content,
		LastModified: lastModified,
	}

	marshalledEvent, err := unsafeJSONMarshal(e)
	if err != nil {
		m.log.WithTransactionID(tid).WithError(err).Warn("Couldn't marshall event, skipping message")
		return kafka.FTMessage{}, err
	}

	headers := map[string]string{
		"X-Request-Id":      tid,
		"Message-Timestamp": lastModified,
		"Message-ID":        uuid.New().String(),
		"Message-Type":      "cms-content-published",
		"Content-Type":      "application/json",
		"Origin-System-ID":  activitySystemOrigin,
	}
	return kafka.FTMessage{Headers: headers, Body: string(marshalledEvent)}, nil
}

func isPublishEvent(a *Activity) bool {
	return a.Action == nil || !strings.EqualFold(*a.Action, deleteAction)
}

// getContentUUID keeps activity IDs that are already UUIDs, others get a stable name based one.
func getContentUUID(activityID string) string {
	if id, err := uuid.Parse(activityID); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(activityAuthority+"/"+activityID)).String()
}

func deriveRawContentUUID(contentUUID string) (string, error) {
	id, err := uuidUtils.NewUUIDFromString(contentUUID)
	if err != nil {
		return "", err
	}
	rawUUID, err := uuidUtils.NewUUIDDeriverWith(rawContentSalt).From(id)
	if err != nil {
		return "", err
	}
	return rawUUID.String(), nil
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isValidXHTML(data string) bool {
	d := xml.NewDecoder(strings.NewReader(data))
	for {
		_, err := d.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

func unsafeJSONMarshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	b = bytes.ReplaceAll(b, []byte("\\u003c"), []byte("<"))
	b = bytes.ReplaceAll(b, []byte("\\u003e"), []byte(">"))
	return b, nil
}
