package suggest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	"golang.org/x/time/rate"
)

// RemoteBackend asks an http endpoint for completions. The endpoint answers
// with a json array of strings or {"suggestions": [...]}.
type RemoteBackend struct {
	Url     string
	Client  *http.Client
	limiter *rate.Limiter
}

func NewRemoteBackend(endpoint string, requestsPerSecond float64, burst int) *RemoteBackend {
	return &RemoteBackend{
		Url:     endpoint,
		Client:  http.DefaultClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

type remoteResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (r *RemoteBackend) Suggest(ctx context.Context, query string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	u, err := url.Parse(r.Url)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest endpoint returned %s", res.Status)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var list []string
	if err := jsoncompat.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	wrapped := remoteResponse{}
	if err := jsoncompat.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Suggestions, nil
}
