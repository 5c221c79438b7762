// Package fetch downloads a composition's audio track into scratch storage.
package fetch

import (
	"context"
	"fmt"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"quranreel/logger"
)

const (
	defaultExt   = ".mp3"
	maxRedirects = 10
)

var errInternalAddress = errors.New("loopback, link-local and private addresses need REEL_AUDIO_ALLOWED_HOSTS")

type opener func(ctx context.Context, u *url.URL) (io.ReadCloser, error)

// Fetcher retrieves audio from http(s), s3:// and gs:// references.
type Fetcher struct {
	allowed map[string]struct{}
	timeout time.Duration
	client  *http.Client
	openers map[string]opener
}

// New returns a Fetcher. With an empty allowedHosts any public http(s)
// host is accepted, while s3 and gs buckets and internal addresses are
// refused. A zero timeout means no limit beyond the caller's context.
func New(allowedHosts []string, timeout time.Duration) *Fetcher {
	f := &Fetcher{
		allowed: normalizeAllowedHosts(allowedHosts),
		timeout: timeout,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.allowed == nil {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second, Control: refuseInternal}
		transport.DialContext = dialer.DialContext
	}
	f.client = &http.Client{Transport: transport, CheckRedirect: f.checkRedirect}
	f.openers = map[string]opener{
		"http":  f.openHTTP,
		"https": f.openHTTP,
		"s3":    openS3,
		"gs":    openGCS,
	}
	return f
}

// Fetch writes ref to dir/audio<ext> and returns the file path. The file is
// complete when Fetch returns nil; on error nothing is left behind.
func (f *Fetcher) Fetch(ctx context.Context, ref, dir string) (string, error) {
	u, err := f.Validate(ref)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := f.openers[u.Scheme](ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer body.Close()

	dest := filepath.Join(dir, "audio"+extension(u.Path))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			logger.Warnf("Failed to remove partial audio %s: %v", dest, rmErr)
		}
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	logger.Debugf("Fetched audio %s://%s (%d bytes) in %s", u.Scheme, u.Host, n, time.Since(start).Round(time.Millisecond))
	return dest, nil
}

// Validate parses ref and rejects unsupported schemes, userinfo and
// hosts outside the allowlist. Without an allowlist it also rejects
// s3 and gs references and http(s) hosts naming an internal address.
func (f *Fetcher) Validate(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("invalid audio reference: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if _, ok := f.openers[u.Scheme]; !ok {
		return nil, fmt.Errorf("invalid audio reference %q: scheme must be http, https, s3 or gs", ref)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid audio reference %q: host is required", ref)
	}
	if u.User != nil {
		return nil, fmt.Errorf("invalid audio reference %q: userinfo is not allowed", ref)
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if f.allowed != nil {
		if _, ok := f.allowed[host]; !ok {
			return nil, fmt.Errorf("invalid audio reference %q: host %q is not in REEL_AUDIO_ALLOWED_HOSTS", ref, host)
		}
		return u, nil
	}
	switch {
	case u.Scheme == "s3" || u.Scheme == "gs":
		return nil, fmt.Errorf("invalid audio reference %q: %s buckets must be listed in REEL_AUDIO_ALLOWED_HOSTS", ref, u.Scheme)
	case host == "localhost" || strings.HasSuffix(host, ".localhost"):
		return nil, fmt.Errorf("invalid audio reference %q: %w", ref, errInternalAddress)
	}
	if ip := net.ParseIP(host); ip != nil && isInternal(ip) {
		return nil, fmt.Errorf("invalid audio reference %q: %w", ref, errInternalAddress)
	}
	return u, nil
}

// checkRedirect applies Validate to every hop.
func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("redirect to %s refused: scheme must be http or https", req.URL.Redacted())
	}
	if _, err := f.Validate(req.URL.String()); err != nil {
		return fmt.Errorf("redirect refused: %w", err)
	}
	return nil
}

// refuseInternal runs after DNS resolution, so names that resolve to an
// internal address are caught as well.
func refuseInternal(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("dial %s: not an IP address", address)
	}
	if isInternal(ip) {
		return fmt.Errorf("dial %s: %w", address, errInternalAddress)
	}
	return nil
}

func isInternal(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsPrivate() || ip.IsUnspecified()
}

func (f *Fetcher) openHTTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", u.Redacted(), resp.Status)
	}
	return resp.Body, nil
}

func openS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s%s: %w", u.Host, u.Path, err)
	}
	return out.Body, nil
}

func openGCS(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	r, err := client.Bucket(u.Host).Object(strings.TrimPrefix(u.Path, "/")).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("read gs://%s%s: %w", u.Host, u.Path, err)
	}
	return &gcsBody{Reader: r, client: client}, nil
}

type gcsBody struct {
	*storage.Reader
	client *storage.Client
}

func (b *gcsBody) Close() error {
	err := b.Reader.Close()
	b.client.Close()
	return err
}

// extension keeps a short alphanumeric suffix of p, defaulting to .mp3.
func extension(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if len(ext) < 2 || len(ext) > 6 {
		return defaultExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExt
		}
	}
	return ext
}

func normalizeAllowedHosts(hosts []string) map[string]struct{} {
	out := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		v := strings.ToLower(strings.TrimSpace(h))
		for _, prefix := range []string{"http://", "https://", "s3://", "gs://"} {
			v = strings.TrimPrefix(v, prefix)
		}
		v = strings.Trim(v, "/")
		if i := strings.Index(v, ":"); i >= 0 {
			v = v[:i]
		}
		if v != "" {
			out[v] = struct{}{}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
