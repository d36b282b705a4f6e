package connection

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Endpoint is a resolved store address: either a URIEndpoint or a
// HostPortEndpoint.
type Endpoint interface {
	fmt.Stringer
	redisOptions() (*redis.Options, error)
}

// URIEndpoint is a full redis:// or rediss:// URI used verbatim.
type URIEndpoint struct {
	URI string
}

func (e URIEndpoint) redisOptions() (*redis.Options, error) {
	opts, err := redis.ParseURL(e.URI)
	if err != nil {
		return nil, fmt.Errorf("parsing connection uri: %w", err)
	}

	return opts, nil
}

// String returns the URI with any password redacted.
func (e URIEndpoint) String() string {
	u, err := url.Parse(e.URI)
	if err != nil {
		return "invalid-uri"
	}

	return u.Redacted()
}

// HostPortEndpoint is a host and port pair.
type HostPortEndpoint struct {
	Host string
	Port int
}

func (e HostPortEndpoint) redisOptions() (*redis.Options, error) {
	return &redis.Options{Addr: e.String()}, nil
}

// String returns host:port.
func (e HostPortEndpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Credential is optional secret material attached to the connection.
type Credential struct {
	Username string
	Password string
}

// newEndpoint prefers a URI and otherwise fills host and port defaults.
func newEndpoint(uri, host string, port int) Endpoint {
	if uri != "" {
		return URIEndpoint{URI: uri}
	}
	if host == "" {
		host = DefaultHost
	}
	if port <= 0 {
		port = DefaultPort
	}

	return HostPortEndpoint{Host: host, Port: port}
}

// buildOptions produces client options for the endpoint. Command retries are
// disabled: only connection establishment is retried, by the reconnect
// strategy.
func buildOptions(endpoint Endpoint, cred *Credential) (*redis.Options, error) {
	opts, err := endpoint.redisOptions()
	if err != nil {
		return nil, err
	}
	if cred != nil {
		opts.Password = cred.Password
		if cred.Username != "" {
			opts.Username = cred.Username
		}
	}
	opts.MaxRetries = -1
	// One dial per ping; reconnection is left to the ReconnectStrategy.
	opts.DialerRetries = 1
	opts.DialerRetryTimeout = time.Millisecond

	return opts, nil
}
