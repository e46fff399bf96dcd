package judge

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/auth/credentials"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/record"
)

// Config configures the Gemini judge.
type Config struct {
	Backend  Backend
	Model    string
	APIKey   string
	Project  string
	Location string
	Rate     float64       // calls per second; <= 0 disables pacing
	Burst    int
	Timeout  time.Duration // per attempt
	Retries  int
}

// DefaultConfig returns the Gemini API configuration with the default model.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendGemini,
		Model:    constants.DefaultJudgeModel,
		Location: constants.DefaultJudgeLocation,
		Rate:     constants.DefaultJudgeRPS,
		Burst:    constants.DefaultJudgeBurst,
		Timeout:  constants.JudgeTimeout,
		Retries:  constants.MaxRetries,
	}
}

// generator is the subset of *genai.Models used by the judge.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini labels field pairs with a Google generative model.
type Gemini struct {
	models  generator
	model   string
	backend Backend
	limiter *rate.Limiter
	timeout time.Duration
	retries int
}

// NewGemini creates a Gemini judge. The Gemini backend requires an API key
// (falling back to GEMINI_API_KEY); the Vertex backend requires a project
// and uses the API key when set or Application Default Credentials otherwise.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.NewConfigError("judge", "creating genai client", err)
	}
	return newGemini(client.Models, cfg), nil
}

func newGemini(models generator, cfg Config) *Gemini {
	g := &Gemini{
		models:  models,
		model:   cfg.Model,
		backend: cfg.Backend,
		timeout: cfg.Timeout,
		retries: cfg.Retries,
	}
	if g.model == "" {
		g.model = constants.DefaultJudgeModel
	}
	if g.backend == "" {
		g.backend = BackendGemini
	}
	if g.retries <= 0 {
		g.retries = 1
	}
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}
	return g
}

func clientConfig(cfg Config) (*genai.ClientConfig, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	switch cfg.Backend {
	case BackendGemini, "":
		if apiKey == "" {
			return nil, &errors.ConfigError{
				Component: "judge",
				Message:   "API key required for the gemini backend - set judge.api_key or GEMINI_API_KEY",
				Err:       errors.ErrAPIKeyRequired,
			}
		}
		return &genai.ClientConfig{Backend: genai.BackendGeminiAPI, APIKey: apiKey}, nil

	case BackendVertex:
		project := cfg.Project
		if project == "" {
			project = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		if project == "" {
			return nil, errors.NewConfigError("judge", "project required for the vertex backend - set judge.project or GOOGLE_CLOUD_PROJECT", nil)
		}
		location := cfg.Location
		if location == "" {
			location = constants.DefaultJudgeLocation
		}
		cc := &genai.ClientConfig{Backend: genai.BackendVertexAI, Project: project, Location: location}
		if apiKey != "" {
			cc.APIKey = apiKey
			return cc, nil
		}
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
		})
		if err != nil {
			return nil, errors.NewConfigError("judge", "no Application Default Credentials found - run 'gcloud auth application-default login'", err)
		}
		cc.Credentials = creds
		return cc, nil
	}
	return nil, errors.NewConfigError("judge", fmt.Sprintf("unknown backend %q", cfg.Backend), nil)
}

// Judge asks the model for a label. Failed attempts are retried; the last
// error is returned wrapped in a JudgeError.
func (g *Gemini) Judge(ctx context.Context, field record.FieldName, reference, candidate string) (string, error) {
	prompt := Prompt(field, reference, candidate)
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}

	var lastErr error
	for attempt := 0; attempt < g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", errors.NewJudgeError(string(g.backend), field.String(), ctx.Err())
			case <-time.After(time.Duration(attempt) * constants.RetryBackoff):
			}
		}
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return "", errors.NewJudgeError(string(g.backend), field.String(), err)
			}
		}

		label, err := g.generate(ctx, prompt, config)
		if err == nil {
			if !knownLabel(label) {
				logging.FromContext(ctx).Debug().
					Str("field", field.String()).
					Str("label", label).
					Msg("Judge returned a label outside the default vocabulary")
			}
			return label, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.NewJudgeError(string(g.backend), field.String(), lastErr)
}

func (g *Gemini) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	label := cleanLabel(resp.Text())
	if label == "" {
		return "", errors.New("empty response from model")
	}
	return label, nil
}
