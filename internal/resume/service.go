package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

// Store persists resume rows alongside the uploaded objects.
type Store interface {
	InsertResume(ctx context.Context, r *models.Resume) error
	ListResumesByUser(ctx context.Context, userID string) ([]models.Resume, error)
	GetResumeByID(ctx context.Context, id string) (*models.Resume, error)
}

// ObjectStorage is the subset of the S3 API the service needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Events receives notifications about completed uploads.
type Events interface {
	ResumeUploaded(ctx context.Context, userID, resumeID string)
}

// Metrics counts upload outcomes.
type Metrics interface {
	RecordResumeUpload()
}

type nopEvents struct{}

func (nopEvents) ResumeUploaded(context.Context, string, string) {}

type nopMetrics struct{}

func (nopMetrics) RecordResumeUpload() {}

// S3Config describes the bucket the service writes to. Endpoint is
// optional and supports S3-compatible providers.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds an S3 client from static credentials, pointing at
// a custom endpoint when one is configured.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Config wires a Service.
type Config struct {
	Store   Store
	Storage ObjectStorage
	Bucket  string
	Events  Events
	Metrics Metrics
	Logger  *zap.Logger
}

// Service stores resume files and extracts their text content.
type Service struct {
	store   Store
	storage ObjectStorage
	bucket  string
	events  Events
	metrics Metrics
	log     *zap.Logger
}

// NewService constructs a Service. Events, Metrics and Log may be nil.
func NewService(cfg Config) *Service {
	s := &Service{
		store:   cfg.Store,
		storage: cfg.Storage,
		bucket:  cfg.Bucket,
		events:  cfg.Events,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
	}
	if s.events == nil {
		s.events = nopEvents{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

const (
	uploadRetries   = 3
	uploadRetryWait = 500 * time.Millisecond
)

// Upload stores the file in the bucket, extracts its text, and records
// the resume row. The object write is retried on transient failures.
func (s *Service) Upload(ctx context.Context, userID, filename, mime string, file io.Reader) (*models.Resume, error) {
	if s.storage == nil {
		return nil, errors.New("resume storage is not configured")
	}

	data, err := readAll(file)
	if err != nil {
		return nil, err
	}

	text, err := ExtractText(mime, data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := path.Join("resumes", userID, id+path.Ext(filename))

	if err := withRetry(ctx, uploadRetries, uploadRetryWait, func() error {
		_, err := s.storage.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mime),
		})
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to store resume object: %w", err)
	}

	r := &models.Resume{
		ID:         id,
		UserID:     userID,
		Filename:   filename,
		ObjectKey:  key,
		MIME:       mime,
		Size:       int64(len(data)),
		Text:       text,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.store.InsertResume(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to record resume: %w", err)
	}

	s.metrics.RecordResumeUpload()
	s.events.ResumeUploaded(ctx, userID, id)
	s.log.Info("resume uploaded",
		zap.String("user_id", userID),
		zap.String("resume_id", id),
		zap.Int("size", len(data)))

	return r, nil
}

// List returns the user's resumes, newest first, without text bodies.
func (s *Service) List(ctx context.Context, userID string) ([]models.Resume, error) {
	return s.store.ListResumesByUser(ctx, userID)
}

// Download fetches the stored object for an existing resume row.
// The caller owns the returned reader.
func (s *Service) Download(ctx context.Context, id string) (*models.Resume, io.ReadCloser, error) {
	r, err := s.store.GetResumeByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, nil
	}
	if s.storage == nil {
		return nil, nil, errors.New("resume storage is not configured")
	}

	out, err := s.storage.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(r.ObjectKey),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch resume object: %w", err)
	}
	return r, out.Body, nil
}

// withRetry runs fn up to attempts times, waiting progressively longer
// between tries. It stops early when the context is done.
func withRetry(ctx context.Context, attempts int, wait time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait * time.Duration(i+1)):
		}
	}
	return err
}
