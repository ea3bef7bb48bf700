package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/SuyashBhavalkar3/posturecoach/errors"
)

// RemoteEstimator calls a pose-estimation sidecar over HTTP. The sidecar
// accepts a JPEG-encoded frame via POST and answers with a JSON body:
//
//	{"landmarks": [{"x": 0.5, "y": 0.4, "visibility": 0.98}, ...]}
//
// An absent or empty landmark array means nothing was detected.
type RemoteEstimator struct {
	url        string
	httpClient *http.Client
}

// remoteResponse is the sidecar's wire format.
type remoteResponse struct {
	Landmarks []Landmark `json:"landmarks"`
}

// NewRemoteEstimator creates an estimator client for the sidecar at url.
// A zero timeout defaults to 10 seconds.
func NewRemoteEstimator(url string, timeout time.Duration) (*RemoteEstimator, error) {
	if url == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("estimator URL is empty"),
			"RemoteEstimator", "NewRemoteEstimator", "validate url",
		)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RemoteEstimator{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Estimate encodes the frame as JPEG, posts it to the sidecar, and decodes
// the landmark response. Safe for concurrent use; http.Client serializes
// nothing and is itself concurrency-safe.
func (e *RemoteEstimator) Estimate(ctx context.Context, frame image.Image) ([]Landmark, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: 85}); err != nil {
		return nil, errors.WrapInvalid(err, "RemoteEstimator", "Estimate", "encode frame")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &buf)
	if err != nil {
		return nil, errors.WrapInvalid(err, "RemoteEstimator", "Estimate", "build request")
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapTransient(err, "RemoteEstimator", "Estimate", "post frame")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.WrapTransient(
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
			"RemoteEstimator", "Estimate", "check status",
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.WrapTransient(err, "RemoteEstimator", "Estimate", "read response")
	}

	var decoded remoteResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.WrapInvalid(err, "RemoteEstimator", "Estimate", "unmarshal response")
	}

	if len(decoded.Landmarks) == 0 {
		return nil, nil // nothing detected
	}
	return decoded.Landmarks, nil
}
