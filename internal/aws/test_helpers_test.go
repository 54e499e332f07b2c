package aws

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// scriptedDoer answers each HTTP request with the next scripted status and
// records what it was sent. Requests beyond the script get 200.
type scriptedDoer struct {
	mu       sync.Mutex
	statuses []int
	requests []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.requests = append(d.requests, req)
	status := http.StatusOK
	if i := len(d.requests) - 1; i < len(d.statuses) {
		status = d.statuses[i]
	}

	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header: http.Header{
			"X-Amz-Request-Id": []string{fmt.Sprintf("req-%d", len(d.requests))},
		},
		Body:    io.NopCloser(strings.NewReader("")),
		Request: req,
	}, nil
}

func (d *scriptedDoer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func newScriptedS3Client(doer *scriptedDoer, settings ClientSettings) *s3.Client {
	cfg := awssdk.Config{
		Region:      "us-east-1",
		Credentials: awssdk.AnonymousCredentials{},
		HTTPClient:  doer,
	}
	if settings.Endpoint == "" {
		settings.Endpoint = "http://blob.test"
	}
	return NewS3Client(cfg, settings)
}
