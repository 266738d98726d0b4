package alpaca

import (
	alpaca_api "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

const (
	paperTradingURL = "https://paper-api.alpaca.markets"
	liveTradingURL  = "https://api.alpaca.markets"
)

// Client wraps the official Alpaca SDK clients behind the broker gateway.
// Trading calls go to the paper or live host depending on configuration;
// market data always comes from the data host.
type Client struct {
	trading *alpaca_api.Client
	market  *marketdata.Client
	paper   bool
}

// Config holds the configuration for the Alpaca client
type Config struct {
	APIKey    string
	SecretKey string
	Paper     bool
}

// NewClient creates a new Alpaca client.
func NewClient(config Config) *Client {
	baseURL := liveTradingURL
	if config.Paper {
		baseURL = paperTradingURL
	}

	trading := alpaca_api.NewClient(alpaca_api.ClientOpts{
		APIKey:    config.APIKey,
		APISecret: config.SecretKey,
		BaseURL:   baseURL,
	})

	market := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    config.APIKey,
		APISecret: config.SecretKey,
	})

	return &Client{
		trading: trading,
		market:  market,
		paper:   config.Paper,
	}
}

// IsPaper returns whether the client targets the paper trading environment.
func (c *Client) IsPaper() bool {
	return c.paper
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.paper {
		return "paper"
	}
	return "live"
}
