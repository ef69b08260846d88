package commands

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	rootcerts "github.com/hashicorp/go-rootcerts"
	vaultapi "github.com/hashicorp/vault/api"
)

// ClientSet is a collection of API clients that commands use to talk to
// remote backends like Consul or Vault. A zero set is valid; commands
// whose client is missing fail their fetches, which degrades those
// placeholders to their defaults.
type ClientSet struct {
	sync.RWMutex

	vault  *vaultClient
	consul *consulClient
}

type consulClient struct {
	client     *consulapi.Client
	httpClient *http.Client
}

type vaultClient struct {
	client     *vaultapi.Client
	httpClient *http.Client
}

// CreateClientInput is used as input to the CreateClient functions.
type CreateClientInput struct {
	Address   string
	Namespace string
	Token     string
	// vault only
	UnwrapToken bool
	// consul only
	AuthEnabled  bool
	AuthUsername string
	AuthPassword string
	// Transport/TLS
	SSLEnabled bool
	SSLVerify  bool
	SSLCert    string
	SSLKey     string
	SSLCACert  string
	SSLCAPath  string
	ServerName string

	TransportDialKeepAlive       time.Duration
	TransportDialTimeout         time.Duration
	TransportDisableKeepAlives   bool
	TransportIdleConnTimeout     time.Duration
	TransportMaxIdleConns        int
	TransportMaxIdleConnsPerHost int
	TransportTLSHandshakeTimeout time.Duration

	// optional, principally for testing
	HttpClient *http.Client
}

// NewClientSet creates a new client set that is ready to accept clients.
func NewClientSet() *ClientSet {
	return &ClientSet{}
}

// CreateConsulClient creates a new Consul API client from the given input.
func (c *ClientSet) CreateConsulClient(i *CreateClientInput) error {
	consulConfig := consulapi.DefaultConfig()

	if i.Address != "" {
		consulConfig.Address = i.Address
	}

	if i.Namespace != "" {
		consulConfig.Namespace = i.Namespace
	}

	if i.Token != "" {
		consulConfig.Token = i.Token
	}

	if i.AuthEnabled {
		consulConfig.HttpAuth = &consulapi.HttpBasicAuth{
			Username: i.AuthUsername,
			Password: i.AuthPassword,
		}
	}

	client, err := httpClient(i)
	if err != nil {
		return err
	}
	consulConfig.HttpClient = client

	if i.SSLEnabled {
		consulConfig.Scheme = "https"
	}

	api, err := consulapi.NewClient(consulConfig)
	if err != nil {
		return fmt.Errorf("client set: consul: %s", err)
	}

	c.Lock()
	c.consul = &consulClient{
		client:     api,
		httpClient: consulConfig.HttpClient,
	}
	c.Unlock()

	return nil
}

// CreateVaultClient creates a new Vault API client from the given input.
func (c *ClientSet) CreateVaultClient(i *CreateClientInput) error {
	vaultConfig := vaultapi.DefaultConfig()

	if i.Address != "" {
		vaultConfig.Address = i.Address
	}

	client, err := httpClient(i)
	if err != nil {
		return err
	}
	vaultConfig.HttpClient = client

	api, err := vaultapi.NewClient(vaultConfig)
	if err != nil {
		return fmt.Errorf("client set: vault: %s", err)
	}

	if i.Namespace != "" {
		api.SetNamespace(i.Namespace)
	}

	if i.Token != "" {
		api.SetToken(i.Token)
	}

	// Unwrap a response-wrapped token into the real client token.
	if i.UnwrapToken {
		secret, err := api.Logical().Unwrap(i.Token)
		switch {
		case err != nil:
			return fmt.Errorf("client set: vault unwrap: %s", err)
		case secret == nil:
			return fmt.Errorf("client set: vault unwrap: no secret")
		case secret.Auth == nil:
			return fmt.Errorf("client set: vault unwrap: no secret auth")
		case secret.Auth.ClientToken == "":
			return fmt.Errorf("client set: vault unwrap: no token returned")
		default:
			api.SetToken(secret.Auth.ClientToken)
		}
	}

	c.Lock()
	c.vault = &vaultClient{
		client:     api,
		httpClient: vaultConfig.HttpClient,
	}
	c.Unlock()

	return nil
}

// Consul returns the Consul client for this set, or nil when none was
// created.
func (c *ClientSet) Consul() *consulapi.Client {
	c.RLock()
	defer c.RUnlock()
	if c == nil || c.consul == nil {
		return nil
	}
	return c.consul.client
}

// Vault returns the Vault client for this set, or nil when none was
// created.
func (c *ClientSet) Vault() *vaultapi.Client {
	c.RLock()
	defer c.RUnlock()
	if c == nil || c.vault == nil {
		return nil
	}
	return c.vault.client
}

// Stop closes all idle connections for any attached clients.
func (c *ClientSet) Stop() {
	c.Lock()
	defer c.Unlock()

	if c.consul != nil && c.consul.httpClient != nil {
		c.consul.httpClient.CloseIdleConnections()
	}
	if c.vault != nil && c.vault.httpClient != nil {
		c.vault.httpClient.CloseIdleConnections()
	}
}

// httpClient returns the http.Client to use with the API client.
// Returns the test one if given, otherwise creates one with default transport.
func httpClient(i *CreateClientInput) (client *http.Client, err error) {
	if i.HttpClient != nil {
		return i.HttpClient, nil
	}
	var transport *http.Transport
	if transport, err = newTransport(i); err == nil {
		client = &http.Client{
			Transport: transport,
		}
	}
	return client, err
}

func newTransport(i *CreateClientInput) (*http.Transport, error) {
	// This transport will attempt to keep connections open to the server.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		Dial: (&net.Dialer{
			Timeout:   i.TransportDialTimeout,
			KeepAlive: i.TransportDialKeepAlive,
		}).Dial,
		DisableKeepAlives:   i.TransportDisableKeepAlives,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        i.TransportMaxIdleConns,
		IdleConnTimeout:     i.TransportIdleConnTimeout,
		MaxIdleConnsPerHost: i.TransportMaxIdleConnsPerHost,
		TLSHandshakeTimeout: i.TransportTLSHandshakeTimeout,
	}

	if i.SSLEnabled {
		var tlsConfig tls.Config

		if i.SSLCert != "" && i.SSLKey != "" {
			cert, err := tls.LoadX509KeyPair(i.SSLCert, i.SSLKey)
			if err != nil {
				return nil, fmt.Errorf("client set: ssl: %s", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		} else if i.SSLCert != "" {
			cert, err := tls.LoadX509KeyPair(i.SSLCert, i.SSLCert)
			if err != nil {
				return nil, fmt.Errorf("client set: ssl: %s", err)
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}

		if i.SSLCACert != "" || i.SSLCAPath != "" {
			rootConfig := &rootcerts.Config{
				CAFile: i.SSLCACert,
				CAPath: i.SSLCAPath,
			}
			if err := rootcerts.ConfigureTLS(&tlsConfig, rootConfig); err != nil {
				return nil, fmt.Errorf("client set: configuring TLS failed: %s", err)
			}
		}

		if i.ServerName != "" {
			tlsConfig.ServerName = i.ServerName
			tlsConfig.InsecureSkipVerify = false
		}
		if !i.SSLVerify {
			tlsConfig.InsecureSkipVerify = true
		}

		transport.TLSClientConfig = &tlsConfig
	}
	return transport, nil
}
