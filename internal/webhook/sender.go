package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
)

type Event string

const (
	EventJobCompleted         Event = "job_completed"
	EventJobFailed            Event = "job_failed"
	EventPrinterStatusChanged Event = "printer_status_changed"
)

func KnownEvent(name string) bool {
	switch Event(name) {
	case EventJobCompleted, EventJobFailed, EventPrinterStatusChanged:
		return true
	}
	return false
}

type Payload struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type JobEventData struct {
	JobID         string `json:"job_id"`
	PrinterID     string `json:"printer_id"`
	Status        string `json:"status"`
	TotalPages    int    `json:"total_pages"`
	FailureReason string `json:"failure_reason,omitempty"`
	DurationMS    int64  `json:"duration_ms,omitempty"`
}

type PrinterStatusData struct {
	PrinterID      string    `json:"printer_id"`
	PrinterName    string    `json:"printer_name"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Timestamp      time.Time `json:"timestamp"`
}

type Config struct {
	RetryCount  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	WorkerCount int
	QueueSize   int
}

type task struct {
	webhook *db.Webhook
	payload *Payload
	attempt int
}

// Sender delivers webhook notifications asynchronously so that job dispatch
// never waits on a slow subscriber.
type Sender struct {
	webhooks   *db.WebhookOperations
	httpClient *http.Client
	retryCount int
	retryDelay time.Duration
	workers    int
	queue      chan *task
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewSender(webhooks *db.WebhookOperations, cfg Config) *Sender {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}

	return &Sender{
		webhooks: webhooks,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		workers:    cfg.WorkerCount,
		queue:      make(chan *task, cfg.QueueSize),
		stopCh:     make(chan struct{}),
	}
}

func (s *Sender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *Sender) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// JobCompleted implements core.JobNotifier.
func (s *Sender) JobCompleted(job core.Job) {
	s.enqueue(EventJobCompleted, jobEventData(job))
}

// JobFailed implements core.JobNotifier.
func (s *Sender) JobFailed(job core.Job) {
	s.enqueue(EventJobFailed, jobEventData(job))
}

// PrinterStatusChanged implements core.StatusNotifier.
func (s *Sender) PrinterStatusChanged(printerID, printerName string, oldStatus, newStatus core.PrinterStatus) {
	s.enqueue(EventPrinterStatusChanged, &PrinterStatusData{
		PrinterID:      printerID,
		PrinterName:    printerName,
		PreviousStatus: string(oldStatus),
		NewStatus:      string(newStatus),
		Timestamp:      time.Now(),
	})
}

func jobEventData(job core.Job) *JobEventData {
	data := &JobEventData{
		JobID:         job.ID,
		PrinterID:     job.PrinterID,
		Status:        string(job.Status),
		TotalPages:    job.TotalPages,
		FailureReason: job.FailureReason,
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		data.DurationMS = job.CompletedAt.Sub(*job.StartedAt).Milliseconds()
	}
	return data
}

func (s *Sender) enqueue(event Event, data interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	webhooks, err := s.webhooks.ListForEvent(ctx, string(event))
	if err != nil {
		log.Printf("[webhook] failed to get webhooks for event %s: %v", event, err)
		return
	}

	for _, w := range webhooks {
		t := &task{
			webhook: w,
			payload: &Payload{
				Event:     string(event),
				Timestamp: time.Now(),
				Data:      data,
			},
		}

		select {
		case s.queue <- t:
		default:
			log.Printf("[webhook] queue full, dropping webhook %d for event %s", w.ID, event)
		}
	}
}

func (s *Sender) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case t := <-s.queue:
			s.deliver(t)
		}
	}
}

func (s *Sender) deliver(t *task) {
	body, err := json.Marshal(t.payload)
	if err != nil {
		log.Printf("[webhook] failed to encode payload for webhook %d: %v", t.webhook.ID, err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, t.webhook.URL, bytes.NewReader(body))
	if err != nil {
		log.Printf("[webhook] failed to build request for webhook %d: %v", t.webhook.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Print-Event", t.payload.Event)
	if t.webhook.Secret != "" {
		req.Header.Set("X-Print-Signature", sign(t.webhook.Secret, body))
	}

	resp, err := s.httpClient.Do(req)
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return
		}
		err = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if t.attempt+1 < s.retryCount {
		t.attempt++
		log.Printf("[webhook] delivery to %s failed (attempt %d): %v", t.webhook.URL, t.attempt, err)
		time.AfterFunc(s.retryDelay*time.Duration(t.attempt), func() {
			select {
			case s.queue <- t:
			case <-s.stopCh:
			}
		})
		return
	}

	log.Printf("[webhook] giving up on webhook %d after %d attempts: %v", t.webhook.ID, s.retryCount, err)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
