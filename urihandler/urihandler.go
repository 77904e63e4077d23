// Package urihandler is the HTTP fetch helper shared by all channels.
package urihandler

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/jmcvetta/napping"
	"github.com/op/go-logging"
	"golang.org/x/net/proxy"

	"github.com/Sopor/plugin.video.retrospect/config"
	"github.com/Sopor/plugin.video.retrospect/util"
)

var log = logging.MustGetLogger("urihandler")

const (
	defaultTimeout          = 30 * time.Second
	burstRate               = 10
	burstTime               = 1 * time.Second
	simultaneousConnections = 4
	maxBodySize             = 32 << 20
)

// ProxyConfig describes an upstream proxy. Type is "http" or "socks5".
type ProxyConfig struct {
	Type     string
	Host     string
	Port     int
	Login    string
	Password string
}

type Options struct {
	Proxy     *ProxyConfig
	Timeout   time.Duration
	UserAgent string
}

type Handler struct {
	client    *http.Client
	session   *napping.Session
	limiter   *util.RateLimiter
	userAgent string
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("urihandler: %s returned %d", e.URL, e.StatusCode)
}

func New(opts Options) (*Handler, error) {
	transport := &http.Transport{
		Proxy:                 nil,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}

	if p := opts.Proxy; p != nil && p.Host != "" {
		addr := net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
		switch strings.ToLower(p.Type) {
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if p.Login != "" {
				auth = &proxy.Auth{User: p.Login, Password: p.Password}
			}
			dialer, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("urihandler: socks5 proxy %s: %w", addr, err)
			}
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				transport.DialContext = cd.DialContext
			} else {
				transport.DialContext = func(_ context.Context, network, address string) (net.Conn, error) {
					return dialer.Dial(network, address)
				}
			}
		case "http", "https", "":
			proxyURL := &url.URL{Scheme: "http", Host: addr}
			if p.Login != "" {
				proxyURL.User = url.UserPassword(p.Login, p.Password)
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		default:
			return nil, fmt.Errorf("urihandler: unsupported proxy type %q", p.Type)
		}
		log.Infof("Using %s proxy %s", p.Type, addr)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Linux; Android 8.0; Kodi) " + util.UserAgent()
	}

	client := &http.Client{Transport: transport, Timeout: timeout}
	return &Handler{
		client:    client,
		session:   &napping.Session{Client: client},
		limiter:   util.NewRateLimiter(burstRate, burstTime, simultaneousConnections),
		userAgent: userAgent,
	}, nil
}

// FromConfig builds a handler using the proxy settings of c.
func FromConfig(c *config.Configuration) (*Handler, error) {
	opts := Options{}
	if c.ProxyEnabled {
		opts.Proxy = &ProxyConfig{
			Type:     c.ProxyType,
			Host:     c.ProxyHost,
			Port:     c.ProxyPort,
			Login:    c.ProxyLogin,
			Password: c.ProxyPassword,
		}
	}
	return New(opts)
}

func (h *Handler) Close() {
	h.limiter.Close()
}

// Open fetches rawURL and returns the decoded body.
func (h *Handler) Open(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	var body string
	err := h.limiter.Call(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", h.userAgent)
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("urihandler: opening %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
		}

		reader, err := decodeBody(resp)
		if err != nil {
			return fmt.Errorf("urihandler: decoding %s: %w", rawURL, err)
		}
		data, err := io.ReadAll(io.LimitReader(reader, maxBodySize))
		if err != nil {
			return fmt.Errorf("urihandler: reading %s: %w", rawURL, err)
		}
		body = string(data)
		log.Debugf("Opened %s (%d bytes, %s)", rawURL, len(data), time.Since(start))
		return nil
	})
	return body, err
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "deflate":
		return zlib.NewReader(resp.Body)
	default:
		return resp.Body, nil
	}
}

// GetJSON fetches a JSON API endpoint and decodes it into result.
func (h *Handler) GetJSON(ctx context.Context, rawURL string, params url.Values, result interface{}) error {
	return h.limiter.Call(ctx, func() error {
		header := http.Header{
			"User-Agent": []string{h.userAgent},
			"Accept":     []string{"application/json"},
		}
		req := napping.Request{
			Url:    rawURL,
			Method: "GET",
			Header: &header,
			Result: result,
		}
		if len(params) > 0 {
			req.Params = &params
		}
		// napping requests carry no context, so a cancel during Send only
		// shows afterwards
		resp, err := h.session.Send(&req)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return fmt.Errorf("urihandler: json %s: %w", rawURL, err)
		}
		if status := resp.Status(); status < 200 || status > 299 {
			return &HTTPError{URL: rawURL, StatusCode: status}
		}
		return nil
	})
}

// MakeAbsolute resolves ref against base; absolute refs are returned as-is.
func MakeAbsolute(base string, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
