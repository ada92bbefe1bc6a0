package fineract

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
	"github.com/ledgerload/ledgerload/internal/common/logging"
)

const (
	TenantHeader = "Fineract-Platform-TenantId"
	ClientHeader = "X-FINERACT-CLIENT-ID"

	// Response bodies are attached to errors; anything beyond this is dropped.
	maxErrorBody = 64 * 1024
)

type LoginCredentials struct {
	Username string `mapstructure:"username" yaml:"username" validate:"required"`
	Password string `mapstructure:"password" yaml:"password"`
}

func (c LoginCredentials) header() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

type ApiConnectionDetails struct {
	// Url is where the timed workload is sent.
	Url string
	// SetupUrl, if set, is where setup calls go instead of Url. Some deployments put the
	// write-heavy setup on a backend that skips the public gateway.
	SetupUrl           string
	BasicAuth          LoginCredentials
	TenantId           string
	ClientId           string
	InsecureSkipVerify bool
	Timeout            time.Duration
	// MaxIdleConnsPerHost should be at least the number of simulated users, otherwise
	// connections are churned under load.
	MaxIdleConnsPerHost int
}

// Connection carries the transport and the fixed header set shared by every resource client.
// It is safe for concurrent use.
type Connection struct {
	baseURL    string
	headers    http.Header
	httpClient *http.Client
	setup      *Connection
}

func NewConnection(details *ApiConnectionDetails) (*Connection, error) {
	base, err := parseBaseURL(details.Url)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if details.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	if details.MaxIdleConnsPerHost > 0 {
		transport.MaxIdleConnsPerHost = details.MaxIdleConnsPerHost
		transport.MaxIdleConns = details.MaxIdleConnsPerHost * 2
	}

	headers := http.Header{}
	headers.Set("Authorization", details.BasicAuth.header())
	headers.Set(TenantHeader, details.TenantId)
	if details.ClientId != "" {
		headers.Set(ClientHeader, details.ClientId)
	}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	conn := &Connection{
		baseURL:    base,
		headers:    headers,
		httpClient: &http.Client{Transport: transport, Timeout: details.Timeout},
	}
	conn.setup = conn
	if details.SetupUrl != "" && details.SetupUrl != details.Url {
		setupBase, err := parseBaseURL(details.SetupUrl)
		if err != nil {
			return nil, err
		}
		conn.setup = &Connection{baseURL: setupBase, headers: headers, httpClient: conn.httpClient}
		conn.setup.setup = conn.setup
	}
	return conn, nil
}

func parseBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.WithStack(&ledgererrors.ErrInvalidArgument{Name: "url", Value: raw, Message: err.Error()})
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.WithStack(&ledgererrors.ErrInvalidArgument{
			Name:    "url",
			Value:   raw,
			Message: "scheme must be http or https",
		})
	}
	return strings.TrimSuffix(u.String(), "/"), nil
}

// Setup returns the connection setup calls should use. It shares the transport with c.
func (c *Connection) Setup() *Connection {
	return c.setup
}

func (c *Connection) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Connection) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do sends in as JSON to path and decodes a 200 response into out. in and out may be nil.
func (c *Connection) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s request", method, path)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.WithStack(err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.WithError(err).Debug("closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.WithStack(&ledgererrors.ErrHttp{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(msg),
		})
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

// CommandResult is the body the ledger answers create and command calls with.
type CommandResult struct {
	ResourceID int64 `json:"resourceId"`
	OfficeID   int64 `json:"officeId,omitempty"`
	ClientID   int64 `json:"clientId,omitempty"`
	SavingsID  int64 `json:"savingsId,omitempty"`
	LoanID     int64 `json:"loanId,omitempty"`
	// CorrelationID is set instead of the ids when the command was queued for async processing.
	CorrelationID string `json:"correlationId,omitempty"`
}

func (c *Connection) command(ctx context.Context, path string, query url.Values, in interface{}) (CommandResult, error) {
	var result CommandResult
	if err := c.do(ctx, http.MethodPost, path, query, in, &result); err != nil {
		return CommandResult{}, err
	}
	return result, nil
}

func commandQuery(command string) url.Values {
	return url.Values{"command": []string{command}}
}
