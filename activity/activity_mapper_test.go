package activity

import (
	"encoding/json"
	"testing"

	"github.com/Financial-Times/go-logger/v2"
	"github.com/Financial-Times/kafka-client-go/v4"
	"github.com/Financial-Times/upp-activity-payload-mapper/payload"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	messageTimestamp = "2017-04-13T10:27:32.353Z"
	xRequestID       = "tid_123123"
	activityUUID     = "a40808ac-1417-4c48-9781-1dd2d8c8c6dc"
)

var mapper = NewActivityMapper(logger.NewUPPLogger("activity-mapper", "Debug"))

func TestTransformMsg_TidHeaderMissing(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"Message-Timestamp": messageTimestamp,
		},
		Body: `<activity/>`,
	}

	_, _, err := mapper.TransformMsg(message)
	assert.EqualError(t, err, "header X-Request-Id not found in kafka message headers. Skipping message", "Expected error when X-Request-Id is missing")
}

func TestTransformMsg_MessageTimestampHeaderMissing(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id": xRequestID,
		},
		Body: `<activity><activityID>` + activityUUID + `</activityID></activity>`,
	}

	msg, _, err := mapper.TransformMsg(message)
	assert.NoError(t, err, "Error not expected when Message-Timestamp header is missing")
	assert.NotEmpty(t, msg.Body, "Message body should not be empty")
	assert.Contains(t, msg.Body, "\"lastModified\":", "LastModified field should be generated if header value is missing")
	assert.NotEmpty(t, msg.Headers["Message-Timestamp"])
}

func TestTransformMsg_InvalidXML(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: `{"id": "bad50c54-76d9-30e9-8734-b999c708aa4c"}`,
	}

	_, _, err := mapper.TransformMsg(message)
	require.Error(t, err, "Expected error when activity is not XML")
	assert.Contains(t, err.Error(), "activity XML couldn't be parsed")
}

func TestTransformMsg_ActivityIDMissing(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id": xRequestID,
		},
		Body: `<activity><action>post</action></activity>`,
	}

	_, _, err := mapper.TransformMsg(message)
	require.Error(t, err, "Expected error when activity ID is missing")
	assert.Contains(t, err.Error(), "could not extract activity ID")
}

func TestTransformMsg_UnpublishEvent(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: `<activity>
					<action>delete</action>
					<activityID>bad50c54-76d9-30e9-8734-b999c708aa4c</activityID>
				</activity>`,
	}

	resultMsg, contentUUID, err := mapper.TransformMsg(message)
	assert.NoError(t, err, "Error not expected for unpublish event")
	assert.Equal(t, "bad50c54-76d9-30e9-8734-b999c708aa4c", contentUUID, "UUID not extracted correctly from unpublish event")
	assert.Equal(t, "{\"contentUri\":\"http://activity-payload-mapper.svc.ft.com/activity/model/bad50c54-76d9-30e9-8734-b999c708aa4c\",\"payload\":{\"uuid\":\"bad50c54-76d9-30e9-8734-b999c708aa4c\",\"deleted\":true},\"lastModified\":\"2017-04-13T10:27:32.353Z\"}", resultMsg.Body)
}

func TestTransformMsg_Success(t *testing.T) {
	input, err := readContent("activity-input.xml")
	require.NoError(t, err, "Input data for test cannot be loaded from external file")

	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: input,
	}

	resultMsg, contentUUID, err := mapper.TransformMsg(message)
	require.NoError(t, err, "Error not expected for publish event")
	assert.Equal(t, activityUUID, contentUUID)

	assert.Equal(t, xRequestID, resultMsg.Headers["X-Request-Id"])
	assert.Equal(t, messageTimestamp, resultMsg.Headers["Message-Timestamp"])
	assert.Equal(t, "cms-content-published", resultMsg.Headers["Message-Type"])
	assert.Equal(t, "application/json", resultMsg.Headers["Content-Type"])
	assert.Equal(t, activitySystemOrigin, resultMsg.Headers["Origin-System-ID"])
	_, err = uuid.Parse(resultMsg.Headers["Message-ID"])
	assert.NoError(t, err, "Message-ID should be a UUID")

	event := &publicationEvent{}
	require.NoError(t, json.Unmarshal([]byte(resultMsg.Body), event))

	expected := &publicationEvent{
		ContentURI: activityContentURIBase + activityUUID,
		Payload: &activityContent{
			ID:    activityUUID,
			Title: "ECB and Fed debates hit dollar and euro",
			Body:  "<p>The FT's Katie Martin highlights the main stories in the markets.</p>",
			Identifiers: []identifier{{
				Authority:       activityAuthority,
				IdentifierValue: activityUUID,
			}},
			FirstPublishedDate: "2017-04-06T09:58:35.440Z",
			Action:             "post",
			Actor:              "ftmarkets",
			Source:             "web",
			WebURL:             "http://twitter.com/ftmarkets/statuses/1234",
			MediaURLs: []mediaURL{
				{URL: "http://example.com/markets.mp4", Height: "360", Width: "640", Duration: "120", Type: "video", MimeType: "video/mp4"},
				{URL: "http://example.com/markets.jpg", MimeType: "image/jpeg"},
			},
			Type:             activityType,
			LastModified:     messageTimestamp,
			PublishReference: xRequestID,
		},
		LastModified: messageTimestamp,
	}
	assert.Equal(t, expected, event)
	assert.Contains(t, resultMsg.Body, "\"body\":\"<p>", "Markup should not be escaped in the produced JSON")
}

func TestTransformMsg_NonUUIDActivityID(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: `<activity><activityID>tag:gnip.com,2010:activity/1234</activityID></activity>`,
	}

	_, first, err := mapper.TransformMsg(message)
	require.NoError(t, err)
	_, second, err := mapper.TransformMsg(message)
	require.NoError(t, err)

	_, err = uuid.Parse(first)
	assert.NoError(t, err, "Content UUID should be generated for non UUID activity IDs")
	assert.Equal(t, first, second, "Generated content UUID should be stable")
}

func TestTransformMsg_WithRawContent(t *testing.T) {
	p, err := payload.NewPayload(strPtr("title"), nil, nil, []byte(`{"text":"raw tweet"}`))
	require.NoError(t, err)
	a := &Activity{ActivityID: strPtr(activityUUID), Payload: p}

	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: a.String(),
	}

	resultMsg, _, err := mapper.TransformMsg(message)
	require.NoError(t, err)

	event := &publicationEvent{}
	require.NoError(t, json.Unmarshal([]byte(resultMsg.Body), event))
	require.NotNil(t, event.Payload.RawContent)
	assert.Equal(t, `{"text":"raw tweet"}`, event.Payload.RawContent.Body)
	assert.NotEqual(t, activityUUID, event.Payload.RawContent.ID)

	expectedRawUUID, err := deriveRawContentUUID(activityUUID)
	require.NoError(t, err)
	assert.Equal(t, expectedRawUUID, event.Payload.RawContent.ID)
}

func TestTransformMsg_UndecodableRawIsSkipped(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: `<activity>
					<activityID>` + activityUUID + `</activityID>
					<payload><title>title</title><raw>XYZ</raw></payload>
				</activity>`,
	}

	resultMsg, _, err := mapper.TransformMsg(message)
	require.NoError(t, err, "Raw content that cannot be decoded should not fail the mapping")

	event := &publicationEvent{}
	require.NoError(t, json.Unmarshal([]byte(resultMsg.Body), event))
	assert.Equal(t, "title", event.Payload.Title)
	assert.Nil(t, event.Payload.RawContent)
}

func TestTransformMsg_InvalidXHTMLBodyIsSkipped(t *testing.T) {
	message := kafka.FTMessage{
		Headers: map[string]string{
			"X-Request-Id":      xRequestID,
			"Message-Timestamp": messageTimestamp,
		},
		Body: `<activity>
					<activityID>` + activityUUID + `</activityID>
					<payload><title>title</title><body>&lt;p&gt;unclosed</body></payload>
				</activity>`,
	}

	resultMsg, _, err := mapper.TransformMsg(message)
	require.NoError(t, err)

	event := &publicationEvent{}
	require.NoError(t, json.Unmarshal([]byte(resultMsg.Body), event))
	assert.Empty(t, event.Payload.Body)
	assert.Equal(t, "title", event.Payload.Title)
}
