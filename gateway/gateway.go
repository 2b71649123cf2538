// Package gateway provides a lightweight client for a prescription monitoring
// programme (PMP) gateway. A requesting provider submits a patient's
// demographics, the gateway replies with a one-time link to a rendered
// report, and the client fetches that report on the caller's behalf. Every
// remote condition the gateway can produce is surfaced as one variant of a
// closed Outcome taxonomy rather than as an error.
package gateway

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pkcs12"
)

// Namespace is the XML namespace for the gateway API version this client speaks.
const Namespace = "http://xml.appriss.com/gateway/v5"

// DefaultVersion is the default API version segment used in request URLs.
const DefaultVersion = "v5"

// requestTimeout is the fixed ceiling on any single gateway call.
const requestTimeout = 5 * time.Minute

// Endpoint represents a specific gateway deployment
type Endpoint int

// A list of endpoints
const (
	UnknownEndpoint     Endpoint = iota // unknown
	ProductionEndpoint                  // production gateway
	TestingEndpoint                     // vendor-hosted testing gateway
	DevelopmentEndpoint                 // local development
)

var endpointURLs = [...]string{
	"",
	"https://gateway.apprisshealth.com",
	"https://gateway-test.apprisshealth.com",
	"http://localhost:8400",
}

var endpointNames = [...]string{
	"unknown",
	"production",
	"testing",
	"development",
}

// LookupEndpoint returns an endpoint for (P)roduction, (T)esting or (D)evelopment
func LookupEndpoint(s string) Endpoint {
	s2 := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(s2, "P"):
		return ProductionEndpoint
	case strings.HasPrefix(s2, "T"):
		return TestingEndpoint
	case strings.HasPrefix(s2, "D"):
		return DevelopmentEndpoint
	}
	return UnknownEndpoint
}

// URL returns the default URL of this endpoint
func (ep Endpoint) URL() string {
	return endpointURLs[ep]
}

// Name returns the name of this endpoint
func (ep Endpoint) Name() string {
	return endpointNames[ep]
}

// Config holds the constructor inputs for a Client.
type Config struct {
	URL                 string // base URL of the gateway, e.g. "https://gateway.apprisshealth.com"
	Version             string // API version segment; defaults to DefaultVersion
	Username            string // Basic authentication username
	Password            string // Basic authentication password
	Certificate         string // Base64-encoded PKCS#12 client identity; empty disables mutual TLS
	CertificatePassword string
}

// Client is a session against one gateway deployment. It holds the Basic-auth
// credential pair and the client certificate material for its whole lifetime;
// the TLS identity is built once, on first use, and reused for every
// subsequent call. A Client is safe for concurrent use. Call Close to release
// the held identity when the session is finished with.
type Client struct {
	url      string
	version  string
	username string
	password string

	certificate         string
	certificatePassword string

	mu         sync.Mutex
	httpClient *http.Client
	closed     bool
}

// NewClient creates a gateway client from the supplied configuration.
func NewClient(cfg Config) *Client {
	version := cfg.Version
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		url:                 strings.TrimSuffix(cfg.URL, "/"),
		version:             version,
		username:            cfg.Username,
		password:            cfg.Password,
		certificate:         cfg.Certificate,
		certificatePassword: cfg.CertificatePassword,
	}
}

// Close releases the held TLS identity. It is safe to call more than once;
// any call after Close fails.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
	c.certificate = ""
	c.certificatePassword = ""
}

// patientURL is the patient-stage endpoint for this session.
func (c *Client) patientURL() string {
	return c.url + "/" + c.version + "/patient"
}

// transport (lazily) returns the HTTP client presenting the client certificate.
// The certificate is decoded exactly once and never rebuilt mid-session.
func (c *Client) transport() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("gateway: client is closed")
	}
	if c.httpClient != nil {
		return c.httpClient, nil
	}
	tlsConfig := &tls.Config{}
	if c.certificate != "" {
		cert, err := decodeCertificate(c.certificate, c.certificatePassword)
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	c.httpClient = &http.Client{
		Timeout: requestTimeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}
	return c.httpClient, nil
}

// decodeCertificate turns Base64-encoded PKCS#12 bytes into a TLS client identity.
func decodeCertificate(certificate string, password string) (tls.Certificate, error) {
	der, err := base64.StdEncoding.DecodeString(certificate)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("gateway: invalid certificate encoding: %w", err)
	}
	blocks, err := pkcs12.ToPEM(der, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("gateway: could not decode certificate: %w", err)
	}
	var pemData []byte
	for _, b := range blocks {
		pemData = append(pemData, pem.EncodeToMemory(b)...)
	}
	cert, err := tls.X509KeyPair(pemData, pemData)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("gateway: could not load certificate: %w", err)
	}
	return cert, nil
}

// response is the raw result of one gateway call, uninterpreted.
type response struct {
	status int
	reason string
	body   string
}

// post performs one authenticated POST against the gateway. The gateway
// expects a form-encoded content type even though the payload is XML text.
// The response is returned raw; assigning meaning to the status/body pair is
// the classifier's job, not the transport's.
func (c *Client) post(ctx context.Context, uri string, body string) (*response, error) {
	client, err := c.transport()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/xml")
	id := uuid.New().String()
	start := time.Now()
	log.Debug().Str("request_id", id).Str("uri", uri).Msg("gateway: request")
	resp, err := client.Do(req)
	if err != nil {
		log.Error().Str("request_id", id).Err(err).Msg("gateway: request failed")
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("request_id", id).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("gateway: response")
	return &response{
		status: resp.StatusCode,
		reason: http.StatusText(resp.StatusCode),
		body:   string(raw),
	}, nil
}
