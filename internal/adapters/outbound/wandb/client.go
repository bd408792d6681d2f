package wandb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/podcheck/podcheck/internal/domain"
)

const DefaultBaseURL = "https://api.wandb.ai"

// Client implements domain.ExperimentTracker against the W&B HTTP API.
type Client struct {
	baseURL string
	entity  string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithEntity pins the entity (user or team) runs are created under. When
// unset the viewer's default entity is used.
func WithEntity(entity string) Option {
	return func(c *Client) { c.entity = entity }
}

// WithLogger sets the logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     zerolog.Nop(),
		now:     time.Now,
		newID:   newRunID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entity returns the entity runs will be created under.
func (c *Client) Entity() string { return c.entity }

const viewerQuery = `query Viewer {
  viewer {
    id
    username
    entity
  }
}`

// Login verifies the API key by resolving the viewer.
func (c *Client) Login(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return domain.ErrMissingCredential
	}
	c.apiKey = apiKey

	var out struct {
		Viewer *struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Entity   string `json:"entity"`
		} `json:"viewer"`
	}
	if err := c.graphql(ctx, viewerQuery, nil, &out); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if out.Viewer == nil {
		return errors.New("login: API key not recognised")
	}

	if c.entity == "" {
		c.entity = out.Viewer.Entity
	}
	if c.entity == "" {
		c.entity = out.Viewer.Username
	}
	c.log.Debug().Str("entity", c.entity).Msg("logged in")
	return nil
}

const upsertBucketMutation = `mutation UpsertBucket($name: String, $project: String, $entity: String, $displayName: String, $config: JSONString) {
  upsertBucket(input: {name: $name, modelName: $project, entityName: $entity, displayName: $displayName, config: $config}) {
    bucket {
      id
      name
      displayName
      project {
        name
        entity {
          name
        }
      }
    }
  }
}`

// StartRun creates a run in spec.Project. Login must have succeeded first.
func (c *Client) StartRun(ctx context.Context, spec domain.RunSpec) (domain.TrackedRun, error) {
	if c.apiKey == "" {
		return nil, errors.New("start run: not logged in")
	}

	config, err := encodeConfig(spec.Config)
	if err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	runID := c.newID()
	vars := map[string]any{
		"name":        runID,
		"project":     spec.Project,
		"entity":      c.entity,
		"displayName": spec.Name,
		"config":      config,
	}

	var out struct {
		UpsertBucket *struct {
			Bucket *struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Project struct {
					Name   string `json:"name"`
					Entity struct {
						Name string `json:"name"`
					} `json:"entity"`
				} `json:"project"`
			} `json:"bucket"`
		} `json:"upsertBucket"`
	}
	if err := c.graphql(ctx, upsertBucketMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}
	if out.UpsertBucket == nil || out.UpsertBucket.Bucket == nil {
		return nil, errors.New("start run: server returned no run")
	}

	b := out.UpsertBucket.Bucket
	run := &Run{
		client:  c,
		id:      b.Name,
		entity:  b.Project.Entity.Name,
		project: b.Project.Name,
		started: c.now(),
	}
	if run.id == "" {
		run.id = runID
	}
	if run.entity == "" {
		run.entity = c.entity
	}
	if run.project == "" {
		run.project = spec.Project
	}
	c.log.Debug().Str("run", run.id).Str("project", run.project).Msg("run started")
	return run, nil
}

// encodeConfig wraps each value the way the W&B run config expects.
func encodeConfig(cfg map[string]any) (string, error) {
	wrapped := make(map[string]any, len(cfg))
	for k, v := range cfg {
		wrapped[k] = map[string]any{"value": v, "desc": nil}
	}
	data, err := json.Marshal(wrapped)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/graphql", "application/json", body)
	if err != nil {
		return err
	}

	var resp graphqlResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

// do sends an authenticated request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, url, contentType string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	c.log.Trace().Str("method", method).Str("url", url).Int("status", resp.StatusCode).Msg("wandb request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: HTTP %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
