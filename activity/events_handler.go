package activity

import (
	"io"
	"net/http"

	"github.com/Financial-Times/go-logger/v2"
	"github.com/Financial-Times/kafka-client-go/v4"
	tid "github.com/Financial-Times/transactionid-utils-go"
)

const activitySystemOrigin = "http://cmdb.ft.com/systems/gnip-activity-feed"

type messageProducer interface {
	SendMessage(message kafka.FTMessage) error
}

type ActivityMapperHandler struct {
	messageProducer messageProducer
	activityMapper  ActivityMapper
	log             *logger.UPPLogger
}

func NewRequestHandler(p messageProducer, mapper ActivityMapper, log *logger.UPPLogger) *ActivityMapperHandler {
	return &ActivityMapperHandler{
		messageProducer: p,
		activityMapper:  mapper,
		log:             log,
	}
}

func (h *ActivityMapperHandler) OnMessage(m kafka.FTMessage) {
	transactionID := m.Headers["X-Request-Id"]
	if m.Headers["Origin-System-Id"] != activitySystemOrigin {
		h.log.WithTransactionID(transactionID).Infof("Ignoring message with different Origin-System-Id %v", m.Headers["Origin-System-Id"])
		return
	}

	activityMsg, contentUUID, err := h.activityMapper.TransformMsg(m)
	if err != nil {
		h.log.WithTransactionID(transactionID).WithUUID(contentUUID).WithError(err).Error("Error consuming message")
		return
	}

	err = h.messageProducer.SendMessage(activityMsg)
	if err != nil {
		h.log.WithTransactionID(transactionID).WithUUID(contentUUID).WithError(err).Error("Error sending transformed message to queue")
		return
	}
	h.log.WithTransactionID(transactionID).WithUUID(contentUUID).Infof("Mapped and sent for uuid: %v", contentUUID)
}

func (h *ActivityMapperHandler) MapRequest(w http.ResponseWriter, r *http.Request) {
	transactionID := tid.GetTransactionIDFromRequest(r)
	h.log.WithTransactionID(transactionID).Info("Received transformation request")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeBadRequest(w, transactionID, err)
		return
	}

	m := createMessageFromRequest(transactionID, body, r)
	activityMsg, contentUUID, err := h.activityMapper.TransformMsg(m)
	if err != nil {
		h.log.WithTransactionID(transactionID).WithUUID(contentUUID).WithError(err).Error("Error mapping activity")
		h.writeBadRequest(w, transactionID, err)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	_, err = w.Write([]byte(activityMsg.Body))
	if err != nil {
		h.log.WithTransactionID(transactionID).WithUUID(contentUUID).WithError(err).Warn("Error writing response")
	}
}

func createMessageFromRequest(transactionID string, body []byte, r *http.Request) kafka.FTMessage {
	return kafka.FTMessage{
		Body: string(body),
		Headers: map[string]string{
			"Content-Type":      "application/xml",
			"X-Request-Id":      transactionID,
			"Message-Timestamp": r.Header.Get("Message-Timestamp"),
		},
	}
}

func (h *ActivityMapperHandler) writeBadRequest(w http.ResponseWriter, transactionID string, err error) {
	w.WriteHeader(http.StatusBadRequest)
	if _, werr := w.Write([]byte(err.Error())); werr != nil {
		h.log.WithTransactionID(transactionID).WithError(werr).Warn("Couldn't write Bad Request response")
	}
}
