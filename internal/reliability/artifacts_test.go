package reliability

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/okushigue/rzqr/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	objects      map[string][]byte
	contentTypes map[string]string
	failOn       string
}

func newRecordingUploader() *recordingUploader {
	return &recordingUploader{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (u *recordingUploader) Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	key := aws.ToString(in.Key)
	if key == u.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.objects[aws.ToString(in.Bucket)+"/"+key] = body
	u.contentTypes[key] = aws.ToString(in.ContentType)
	return &manager.UploadOutput{Key: in.Key}, nil
}

func testRun() domain.RunResult {
	return domain.RunResult{
		ID:        "6f1c",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Backend:   "local_simulator",
		Shots:     1024,
		Ranked:    domain.RankedResult{{BitString: "0001", Count: 512, Probability: 0.5}},
	}
}

func TestExport_UploadsResultAndCircuit(t *testing.T) {
	up := newRecordingUploader()
	exp := NewArtifactExporter(up, "experiments", "runs", zerolog.New(nil).Level(zerolog.Disabled))

	require.NoError(t, exp.Export(context.Background(), testRun(), "OPENQASM 2.0;\n"))

	require.Contains(t, up.objects, "experiments/runs/6f1c/result.json")
	require.Contains(t, up.objects, "experiments/runs/6f1c/circuit.qasm")
	assert.Equal(t, "OPENQASM 2.0;\n", string(up.objects["experiments/runs/6f1c/circuit.qasm"]))
	assert.Equal(t, "application/json", up.contentTypes["runs/6f1c/result.json"])

	var decoded domain.RunResult
	require.NoError(t, json.Unmarshal(up.objects["experiments/runs/6f1c/result.json"], &decoded))
	assert.Equal(t, "6f1c", decoded.ID)
	assert.Equal(t, "0001", decoded.Ranked[0].BitString)
}

func TestExport_UploadFailure(t *testing.T) {
	up := newRecordingUploader()
	up.failOn = "runs/6f1c/circuit.qasm"
	exp := NewArtifactExporter(up, "experiments", "runs", zerolog.New(nil).Level(zerolog.Disabled))

	err := exp.Export(context.Background(), testRun(), "OPENQASM 2.0;\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit.qasm")
}

func TestKeys_EmptyPrefix(t *testing.T) {
	exp := NewArtifactExporter(newRecordingUploader(), "b", "", zerolog.New(nil).Level(zerolog.Disabled))
	result, circuit := exp.Keys("abc")
	assert.Equal(t, "abc/result.json", result)
	assert.Equal(t, "abc/circuit.qasm", circuit)
}

func TestNewS3ArtifactExporter_RequiresBucket(t *testing.T) {
	_, err := NewS3ArtifactExporter(context.Background(), S3Config{Region: "auto"}, zerolog.New(nil).Level(zerolog.Disabled))
	assert.Error(t, err)
}

func TestNewS3ArtifactExporter_CustomEndpoint(t *testing.T) {
	exp, err := NewS3ArtifactExporter(context.Background(), S3Config{
		Bucket:          "experiments",
		Endpoint:        "http://127.0.0.1:9000",
		Region:          "auto",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Prefix:          "runs",
	}, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	assert.Equal(t, "experiments", exp.bucket)
}
