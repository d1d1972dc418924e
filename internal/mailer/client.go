package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// EmailJob is one credentials email waiting to be delivered.
type EmailJob struct {
	To           string
	FullName     string
	TempPassword string
}

type Worker struct {
	ID         int
	WorkerPool chan chan EmailJob
	JobChannel chan EmailJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan EmailJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan EmailJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(EmailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing email", "worker_id", w.ID, "to", job.To)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	APIURL       string
	APIKey       string
	FromAddress  string
	SendTimeout  time.Duration
	MaxWorkers   int
	JobQueueSize int
}

// Client delivers invitation emails through a transactional-email HTTP API.
// Sending is asynchronous: Send enqueues and a worker pool does the HTTP
// call, so a slow provider never blocks the invite request.
type Client struct {
	apiURL      string
	apiKey      string
	fromAddress string
	sendTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan EmailJob
	workerPool chan chan EmailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewClient(config Config, logger *slog.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	client := &Client{
		apiURL:      config.APIURL,
		apiKey:      config.APIKey,
		fromAddress: config.FromAddress,
		sendTimeout: sendTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan EmailJob, jobQueueSize),
		workerPool: make(chan chan EmailJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	client.startWorkerPool()

	return client
}

func (c *Client) startWorkerPool() {
	c.once.Do(func() {

		for i := 0; i < c.maxWorkers; i++ {
			worker := NewWorker(i, c.workerPool, c.logger)
			worker.Start(c.ctx, &c.wg, c.processEmailJob)
		}

		go c.dispatch()

		c.logger.Info("mailer worker pool started",
			"max_workers", c.maxWorkers,
			"queue_size", cap(c.jobQueue))
	})
}

func (c *Client) dispatch() {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		select {
		case job := <-c.jobQueue:

			select {
			case jobChannel := <-c.workerPool:

				select {
				case jobChannel <- job:

				case <-c.ctx.Done():
					c.logger.Info("mail dispatcher shutting down")
					return
				}
			case <-c.ctx.Done():
				c.logger.Info("mail dispatcher shutting down")
				return
			}
		case <-c.ctx.Done():
			c.logger.Info("mail dispatcher shutting down")
			return
		}
	}
}

func (c *Client) Shutdown() {
	c.logger.Info("shutting down mailer client")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("mailer client shutdown complete")
}

// SendCredentials queues an invitation email with the user's temporary
// password. It fails only when the queue is full.
func (c *Client) SendCredentials(to, fullName, tempPassword string) error {
	job := EmailJob{
		To:           to,
		FullName:     fullName,
		TempPassword: tempPassword,
	}

	select {
	case c.jobQueue <- job:
		c.logger.Info("credentials email queued",
			"to", to,
			"queue_length", len(c.jobQueue))
		return nil
	default:
		c.logger.Warn("mail queue full, rejecting email",
			"to", to,
			"queue_capacity", cap(c.jobQueue))
		return fmt.Errorf("mail queue full, please try again later")
	}
}

func (c *Client) processEmailJob(job EmailJob) {
	if err := c.deliver(job); err != nil {
		c.logger.Error("failed to deliver credentials email",
			"to", job.To,
			"error", err)
		return
	}
	c.logger.Info("credentials email delivered", "to", job.To)
}

func (c *Client) deliver(job EmailJob) error {
	payload := map[string]interface{}{
		"from":    c.fromAddress,
		"to":      []string{job.To},
		"subject": "Bienvenido al Sistema de Seguimiento de Documentos",
		"text": fmt.Sprintf(
			"Hola %s,\n\nSe ha creado una cuenta para ti.\n\nUsuario: %s\nContraseña temporal: %s\n\nPor favor cambia tu contraseña al iniciar sesión.",
			job.FullName, job.To, job.TempPassword),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpClient := &http.Client{Timeout: c.sendTimeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}
