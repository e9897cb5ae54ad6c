package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	flags "github.com/jessevdk/go-flags"
)

type Chunk struct {
	InitialSize       int64         `long:"chunk-size-initial" env:"CHUNK_SIZE_INITIAL" description:"Initial block range size" default:"12000"`             // nolint:lll
	MinSize           int64         `long:"chunk-size-min" env:"CHUNK_SIZE_MIN" description:"Smallest block range size" default:"2000"`                     // nolint:lll
	MaxSize           int64         `long:"chunk-size-max" env:"CHUNK_SIZE_MAX" description:"Largest block range size" default:"24000"`                     // nolint:lll
	TargetDuration    time.Duration `long:"chunk-target-duration" env:"CHUNK_TARGET_DURATION" description:"Target fetch duration per range" default:"15s"`  // nolint:lll
	BackoffMultiplier float64       `long:"chunk-backoff-multiplier" env:"CHUNK_BACKOFF_MULTIPLIER" description:"Shrink factor on failure" default:"0.5"`   // nolint:lll
	GrowthMultiplier  float64       `long:"chunk-growth-multiplier" env:"CHUNK_GROWTH_MULTIPLIER" description:"Growth factor on fast ranges" default:"1.3"` // nolint:lll
}

func (c Chunk) HasError() error {
	if c.InitialSize < 100 || c.InitialSize > 50_000 {
		return errors.New("initial chunk size must be between 100 and 50000")
	}
	if c.MinSize < 1 {
		return errors.New("minimum chunk size must be positive")
	}
	if c.MaxSize < c.MinSize {
		return errors.New("maximum chunk size must not be below the minimum")
	}
	if c.TargetDuration <= 0 {
		return errors.New("chunk target duration must be positive")
	}
	if c.BackoffMultiplier < 0.1 || c.BackoffMultiplier > 0.9 {
		return errors.New("chunk backoff multiplier must be between 0.1 and 0.9")
	}
	if c.GrowthMultiplier < 1.01 || c.GrowthMultiplier > 3 {
		return errors.New("chunk growth multiplier must be between 1.01 and 3")
	}
	return nil
}

type RPC struct {
	ProviderURLs     []string      `long:"rpc-provider-url" env:"RPC_PROVIDER_URLS" env-delim:"," description:"JSON-RPC endpoints, comma separated"`             // nolint:lll
	Timeout          time.Duration `long:"rpc-timeout" env:"RPC_TIMEOUT" description:"Timeout of one HTTP request" default:"20s"`                                // nolint:lll
	MaxRetries       int           `long:"rpc-max-retries" env:"RPC_MAX_RETRIES" description:"Retries of a retryable RPC call" default:"5"`                      // nolint:lll
	RetryDelay       time.Duration `long:"rpc-retry-delay" env:"RPC_RETRY_DELAY" description:"Base delay between RPC retries" default:"250ms"`                   // nolint:lll
	RateLimitBackoff time.Duration `long:"rpc-rate-limit-backoff" env:"RPC_RATE_LIMIT_BACKOFF" description:"Provider cooldown after a rate limit" default:"10s"` // nolint:lll
	ProviderCooldown time.Duration `long:"rpc-provider-cooldown" env:"RPC_PROVIDER_COOLDOWN" description:"Provider cooldown after a failure" default:"45s"`      // nolint:lll
}

func (r RPC) HasError() error {
	if len(r.ProviderURLs) == 0 {
		return errors.New("at least one RPC provider URL is required")
	}
	if r.MaxRetries < 0 {
		return errors.New("RPC max retries must not be negative")
	}
	if r.Timeout <= 0 {
		return errors.New("RPC timeout must be positive")
	}
	return nil
}

// Provider is one configured JSON-RPC endpoint.
type Provider struct {
	URL   string
	Label string
	// MaxRPS and MaxConcurrency are zero when unlimited.
	MaxRPS         float64
	MaxConcurrency int64
}

// Providers expands the provider URL list with the optional per-provider settings
// RPC_PROVIDER_<i>_LABEL, RPC_PROVIDER_<i>_MAX_RPS and RPC_PROVIDER_<i>_MAX_CONCURRENCY.
func (r RPC) Providers() ([]Provider, error) {
	return ExpandProviders(r.ProviderURLs, os.LookupEnv)
}

// ExpandProviders builds the provider list, reading per-provider settings through lookup.
func ExpandProviders(urls []string, lookup func(string) (string, bool)) ([]Provider, error) {
	providers := make([]Provider, 0, len(urls))
	for _, raw := range urls {
		endpoint := strings.TrimSpace(raw)
		if endpoint == "" {
			continue
		}
		index := len(providers)
		prefix := fmt.Sprintf("RPC_PROVIDER_%d_", index)
		p := Provider{URL: endpoint, Label: fmt.Sprintf("rpc-%d", index)}
		if label, ok := lookup(prefix + "LABEL"); ok && label != "" {
			p.Label = label
		}
		if v, ok := lookup(prefix + "MAX_RPS"); ok && v != "" {
			rps, err := strconv.ParseFloat(v, 64)
			if err != nil || rps < 1 {
				return nil, fmt.Errorf("invalid %sMAX_RPS value %q", prefix, v)
			}
			p.MaxRPS = rps
		}
		if v, ok := lookup(prefix + "MAX_CONCURRENCY"); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid %sMAX_CONCURRENCY value %q", prefix, v)
			}
			p.MaxConcurrency = n
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, errors.New("at least one RPC provider URL is required")
	}
	return providers, nil
}

type Database struct {
	Host        string `long:"db-host" env:"DB_HOST" description:"Postgres host" default:"localhost"`
	Port        int    `long:"db-port" env:"DB_PORT" description:"Postgres port" default:"5432"`
	User        string `long:"db-user" env:"DB_USER" description:"Postgres user" default:"postgres"`
	Password    string `long:"db-pass" env:"DB_PASS" description:"Postgres password" default:"postgres"`
	Name        string `long:"db-name" env:"DB_NAME" description:"Postgres database" default:"squid"`
	Schema      string `long:"db-schema" env:"DB_SCHEMA" description:"Schema holding the tables"`
	SSL         string `long:"db-ssl" env:"DB_SSL" description:"TLS mode: true, false or no-verify" default:"false"`
	SkipMigrate bool   `long:"db-skip-migrate" env:"DB_SKIP_MIGRATE" description:"Do not create missing tables on start"`
}

func (d Database) HasError() error {
	if d.Port <= 0 {
		return fmt.Errorf("invalid DB_PORT value %d", d.Port)
	}
	switch strings.ToLower(d.SSL) {
	case "", "true", "false", "no-verify":
	default:
		return fmt.Errorf("invalid DB_SSL value %q", d.SSL)
	}
	return nil
}

// ConnString builds a postgres:// URL understood by pgx. Credentials are escaped.
func (d Database) ConnString() string {
	sslMode := "disable"
	switch strings.ToLower(d.SSL) {
	case "true":
		sslMode = "verify-full"
	case "no-verify":
		sslMode = "require"
	}
	query := url.Values{"sslmode": {sslMode}}
	if d.Schema != "" {
		query.Set("search_path", d.Schema)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

type Config struct {
	ChainID                int64         `long:"chain-id" env:"CHAIN_ID" description:"Chain id, used as the checkpoint lane" required:"true"`                         // nolint:lll
	ContractAddress        string        `long:"contract-address" env:"RAILGUN_PROXY_CONTRACT_ADDRESS" description:"Privacy pool proxy contract" required:"true"`     // nolint:lll
	StartBlock             int64         `long:"start-block" env:"RAILGUN_PROXY_DEPLOYMENT_BLOCK" description:"Block to start from without a checkpoint" default:"0"` // nolint:lll
	TargetBlock            int64         `long:"target-block" env:"TARGET_BLOCK" description:"Last block to ingest, -1 follows the chain tip" default:"-1"`           // nolint:lll
	Topics                 []string      `long:"topic0" env:"RAILGUN_TOPIC0_LIST" env-delim:"," description:"Topic-0 allow list"`                                     // nolint:lll
	PoseidonAddress        string        `long:"poseidon-contract-address" env:"POSEIDON_T4_CONTRACT_ADDRESS" description:"PoseidonT4 library contract"`              // nolint:lll
	Concurrency            int           `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" description:"Concurrent fetch workers" default:"4"`                        // nolint:lll
	Chunk                  Chunk
	RPC                    RPC
	DB                     Database
	MetricsAddr            string        `long:"metrics-addr" env:"METRICS_ADDR" description:"Address of the Prometheus endpoint, empty disables" default:":2112"` // nolint:lll
	ReportProgressInterval time.Duration `long:"report-progress-interval" env:"REPORT_PROGRESS_INTERVAL" description:"Interval to report progress" default:"30s"`  // nolint:lll
	LogLevel               string        `long:"log-level" env:"LOG_LEVEL" description:"debug, info, warn or error" default:"info"`                                // nolint:lll
}

func (c Config) HasError() error {
	if c.ChainID <= 0 {
		return errors.New("chain id is required")
	}
	if !isAddress(c.ContractAddress) {
		return fmt.Errorf("invalid contract address %q", c.ContractAddress)
	}
	if !isAddress(c.PoseidonAddress) {
		return fmt.Errorf("invalid PoseidonT4 contract address %q", c.PoseidonAddress)
	}
	if c.StartBlock < 0 {
		return errors.New("start block must not be negative")
	}
	if c.TargetBlock > 0 && c.TargetBlock < c.StartBlock {
		return errors.New("target block must not be below the start block")
	}
	if c.Concurrency < 1 || c.Concurrency > 16 {
		return errors.New("fetch concurrency must be between 1 and 16")
	}
	if err := c.Chunk.HasError(); err != nil {
		return err
	}
	if err := c.RPC.HasError(); err != nil {
		return err
	}
	return c.DB.HasError()
}

// LaneID is the checkpoint id of this chain.
func (c Config) LaneID() string {
	return fmt.Sprintf("railgun-%d", c.ChainID)
}

func isAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// Normalize lowercases addresses and topics. An empty topic list means every event the decoder knows.
func (c *Config) Normalize() {
	c.ContractAddress = strings.ToLower(strings.TrimSpace(c.ContractAddress))
	c.PoseidonAddress = strings.ToLower(strings.TrimSpace(c.PoseidonAddress))
	topics := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			topics = append(topics, t)
		}
	}
	c.Topics = topics
}

func Parse() (*Config, error) {
	var config Config
	parser := flags.NewParser(&config, flags.Default)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	config.Normalize()
	if err := config.HasError(); err != nil {
		return nil, err
	}
	return &config, nil
}
