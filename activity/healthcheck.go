package activity

import (
	"net/http"
	"time"

	fthealth "github.com/Financial-Times/go-fthealth/v1_1"
	"github.com/Financial-Times/service-status-go/gtg"
)

const panicGuide = "https://runbooks.ftops.tech/upp-activity-payload-mapper"

type connectivityChecker interface {
	ConnectivityCheck() error
}

type consumerChecker interface {
	connectivityChecker
	MonitorCheck() error
}

type HealthCheck struct {
	consumer      consumerChecker
	producer      connectivityChecker
	appName       string
	appSystemCode string
}

func NewHealthCheck(p connectivityChecker, c consumerChecker, appName, appSystemCode string) *HealthCheck {
	return &HealthCheck{
		consumer:      c,
		producer:      p,
		appName:       appName,
		appSystemCode: appSystemCode,
	}
}

func (h *HealthCheck) Health() func(w http.ResponseWriter, r *http.Request) {
	checks := []fthealth.Check{h.readQueueCheck(), h.writeQueueCheck(), h.readQueueLagCheck()}
	hc := fthealth.TimedHealthCheck{
		HealthCheck: fthealth.HealthCheck{
			SystemCode:  h.appSystemCode,
			Name:        h.appName,
			Description: "Checks if all the dependent services are reachable and healthy.",
			Checks:      checks,
		},
		Timeout: 10 * time.Second,
	}
	return fthealth.Handler(hc)
}

func (h *HealthCheck) readQueueCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "read-message-queue-reachable",
		Name:             "Read Message Queue Reachable",
		Severity:         2,
		BusinessImpact:   "Activities will not be mapped, clients will not see new activity content.",
		TechnicalSummary: "Read message queue is not reachable/healthy",
		PanicGuide:       panicGuide,
		Checker:          statusMessage(h.consumer.ConnectivityCheck, "Successfully connected to the read queue"),
	}
}

func (h *HealthCheck) writeQueueCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "write-message-queue-reachable",
		Name:             "Write Message Queue Reachable",
		Severity:         2,
		BusinessImpact:   "Mapped activities will not be published, clients will not see new activity content.",
		TechnicalSummary: "Write message queue is not reachable/healthy",
		PanicGuide:       panicGuide,
		Checker:          statusMessage(h.producer.ConnectivityCheck, "Successfully connected to the write queue"),
	}
}

func (h *HealthCheck) readQueueLagCheck() fthealth.Check {
	return fthealth.Check{
		ID:               "read-message-queue-lagging",
		Name:             "Read Message Queue Is Not Lagging",
		Severity:         3,
		BusinessImpact:   "Activities will be published with a delay.",
		TechnicalSummary: "Messages awaiting consumption exceed the configured lag tolerance. Check if the service is stuck.",
		PanicGuide:       panicGuide,
		Checker:          statusMessage(h.consumer.MonitorCheck, "Read message queue is not lagging"),
	}
}

func (h *HealthCheck) GTG() gtg.Status {
	consumerCheck := func() gtg.Status {
		return gtgCheck(h.consumer.ConnectivityCheck)
	}
	producerCheck := func() gtg.Status {
		return gtgCheck(h.producer.ConnectivityCheck)
	}

	return gtg.FailFastParallelCheck([]gtg.StatusChecker{
		consumerCheck,
		producerCheck,
	})()
}

func statusMessage(check func() error, okMessage string) func() (string, error) {
	return func() (string, error) {
		if err := check(); err != nil {
			return "", err
		}
		return okMessage, nil
	}
}

func gtgCheck(check func() error) gtg.Status {
	if err := check(); err != nil {
		return gtg.Status{GoodToGo: false, Message: err.Error()}
	}
	return gtg.Status{GoodToGo: true}
}
