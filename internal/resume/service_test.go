package resume

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rustix69/QuantInsiderHirrd/internal/models"
)

type fakeStore struct {
	inserted []*models.Resume
	byID     map[string]*models.Resume
	listed   []models.Resume
	insertFn func(*models.Resume) error
}

func (f *fakeStore) InsertResume(_ context.Context, r *models.Resume) error {
	if f.insertFn != nil {
		if err := f.insertFn(r); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, r)
	return nil
}

func (f *fakeStore) ListResumesByUser(_ context.Context, _ string) ([]models.Resume, error) {
	return f.listed, nil
}

func (f *fakeStore) GetResumeByID(_ context.Context, id string) (*models.Resume, error) {
	return f.byID[id], nil
}

type fakeStorage struct {
	puts     []s3.PutObjectInput
	putErrs  []error
	getBody  string
	getErr   error
	lastKey  string
	putCalls int
}

func (f *fakeStorage) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putCalls++
	if len(f.putErrs) > 0 {
		err := f.putErrs[0]
		f.putErrs = f.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.puts = append(f.puts, *in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeStorage) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.lastKey = *in.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.getBody))}, nil
}

type recordingEvents struct {
	uploads []string
}

func (r *recordingEvents) ResumeUploaded(_ context.Context, userID, resumeID string) {
	r.uploads = append(r.uploads, userID+"/"+resumeID)
}

func newService(store *fakeStore, storage *fakeStorage, events Events) *Service {
	return NewService(Config{
		Store:   store,
		Storage: storage,
		Bucket:  "resumes-test",
		Events:  events,
		Logger:  zap.NewNop(),
	})
}

func TestUpload_PlainText(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	events := &recordingEvents{}
	svc := newService(store, storage, events)

	body := "Go engineer, five years of backend work."
	r, err := svc.Upload(context.Background(), "user-1", "resume.txt", MIMEPlainText, strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, "resume.txt", r.Filename)
	assert.Equal(t, body, r.Text)
	assert.Equal(t, int64(len(body)), r.Size)
	assert.True(t, strings.HasPrefix(r.ObjectKey, "resumes/user-1/"))
	assert.True(t, strings.HasSuffix(r.ObjectKey, ".txt"))

	require.Len(t, store.inserted, 1)
	require.Len(t, storage.puts, 1)
	assert.Equal(t, "resumes-test", *storage.puts[0].Bucket)
	assert.Equal(t, MIMEPlainText, *storage.puts[0].ContentType)

	require.Len(t, events.uploads, 1)
	assert.Equal(t, "user-1/"+r.ID, events.uploads[0])
}

func TestUpload_UnsupportedMIME(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{}
	svc := newService(store, storage, nil)

	_, err := svc.Upload(context.Background(), "user-1", "resume.png", "image/png", bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
	assert.Empty(t, store.inserted)
	assert.Zero(t, storage.putCalls)
}

func TestUpload_RetriesTransientStorageFailure(t *testing.T) {
	store := &fakeStore{}
	storage := &fakeStorage{putErrs: []error{errors.New("connection reset"), nil}}
	svc := newService(store, storage, nil)

	_, err := svc.Upload(context.Background(), "user-1", "resume.txt", MIMEPlainText, strings.NewReader("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, storage.putCalls)
	require.Len(t, store.inserted, 1)
}

func TestUpload_GivesUpAfterRetries(t *testing.T) {
	store := &fakeStore{}
	boom := errors.New("bucket unavailable")
	storage := &fakeStorage{putErrs: []error{boom, boom, boom}}
	svc := newService(store, storage, nil)

	_, err := svc.Upload(context.Background(), "user-1", "resume.txt", MIMEPlainText, strings.NewReader("hi"))
	require.Error(t, err)
	assert.Equal(t, uploadRetries, storage.putCalls)
	assert.Empty(t, store.inserted)
}

func TestUpload_InsertFailureReturnsError(t *testing.T) {
	store := &fakeStore{insertFn: func(*models.Resume) error { return errors.New("db down") }}
	storage := &fakeStorage{}
	events := &recordingEvents{}
	svc := newService(store, storage, events)

	_, err := svc.Upload(context.Background(), "user-1", "resume.txt", MIMEPlainText, strings.NewReader("hi"))
	require.Error(t, err)
	assert.Empty(t, events.uploads)
}

func TestDownload(t *testing.T) {
	store := &fakeStore{byID: map[string]*models.Resume{
		"r-1": {ID: "r-1", UserID: "user-1", ObjectKey: "resumes/user-1/r-1.txt"},
	}}
	storage := &fakeStorage{getBody: "stored text"}
	svc := newService(store, storage, nil)

	r, body, err := svc.Download(context.Background(), "r-1")
	require.NoError(t, err)
	require.NotNil(t, r)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "stored text", string(data))
	assert.Equal(t, "resumes/user-1/r-1.txt", storage.lastKey)
}

func TestDownload_UnknownResume(t *testing.T) {
	svc := newService(&fakeStore{byID: map[string]*models.Resume{}}, &fakeStorage{}, nil)

	r, body, err := svc.Download(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Nil(t, body)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("application/zip", []byte("PK"))
	require.Error(t, err)
}

func TestExtractText_Plain(t *testing.T) {
	text, err := ExtractText(MIMEPlainText, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
