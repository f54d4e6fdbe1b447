package askrank

import (
	"go.uber.org/zap"

	"github.com/campusfeed/askrank/internal/domain"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string

	apiKey           string
	baseURL          string
	model            string
	dimensions       int
	queryInstruction string

	sampleCap      int
	resultCap      int
	semanticWeight float64
	lexicalWeight  float64

	embedder domain.BatchEmbedder
	logger   *zap.Logger
}

// WithRedis sets the post store address list.
func WithRedis(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) { c.addrs = addrs })
}

// WithRedisAuth sets the post store credentials.
func WithRedisAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithKeyPrefix overrides the post key namespace (default "askrank:").
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) { c.keyPrefix = prefix })
}

// WithOpenAI configures the embedding provider. baseURL may be empty for
// the default endpoint; model defaults to text-embedding-3-small.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
		if model != "" {
			c.model = model
		}
		c.dimensions = dimensions
	})
}

// WithQueryInstruction prepends an instruction prefix to every embedded text.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) { c.queryInstruction = instruction })
}

// WithLimits overrides the corpus sample cap and result cap.
func WithLimits(sampleCap, resultCap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.sampleCap = sampleCap
		c.resultCap = resultCap
	})
}

// WithWeights overrides the semantic/lexical blend weights.
func WithWeights(semantic, lexical float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.semanticWeight = semantic
		c.lexicalWeight = lexical
	})
}

// WithEmbedder swaps in a custom embedding backend (tests, local models).
func WithEmbedder(e domain.BatchEmbedder) Option {
	return optionFunc(func(c *clientConfig) { c.embedder = e })
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) { c.logger = l })
}
