package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/integrations"
)

// Parse builds a destination from a URL:
//
//   - http(s)://...                    chat webhook
//   - redis://host[:port][/db]?channel= Redis PUBLISH
//   - mongodb://host[:port]/db?collection= MongoDB insert
func Parse(rawURL string, client *integrations.Client) (Destination, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "invalid notification destination %q", redact(rawURL))
	}
	switch u.Scheme {
	case "http", "https":
		return NewWebhook(rawURL, client), nil
	case "redis", "rediss":
		d, err := NewRedis(rawURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "notification destination %s", redact(rawURL))
		}
		return d, nil
	case "mongodb", "mongodb+srv":
		d, err := NewMongo(rawURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "notification destination %s", redact(rawURL))
		}
		return d, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported notification scheme %q", u.Scheme)
	}
}

// ParseAll parses every non-blank URL. An empty list yields no
// destinations, which disables notification.
func ParseAll(urls []string, client *integrations.Client) ([]Destination, error) {
	var out []Destination
	for _, raw := range urls {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		d, err := Parse(raw, client)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	u.RawQuery = ""
	if u.Scheme == "http" || u.Scheme == "https" {
		u.Path = ""
	}
	return fmt.Sprint(u)
}
