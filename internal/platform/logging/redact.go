package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// credentialKeys are attribute names whose values never reach a log sink.
var credentialKeys = []string{
	"authorization", "Authorization",
	"token", "backend_token", "access_token", "refresh_token",
	"password", "api_key", "cookie", "set_cookie",
}

var (
	jwtValue        = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	authHeaderValue = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
)

// DefaultRedactOptions masks credential keys, anything prefixed "secret",
// bare JWTs and Authorization header values.
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(credentialKeys)+3)
	for _, key := range credentialKeys {
		opts = append(opts, masq.WithFieldName(key))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(jwtValue),
		masq.WithRegex(authHeaderValue),
	)
}

// RedactValues masks any string value containing one of secrets, such as
// the configured backend token inside a logged URL. Empty secrets are
// ignored.
func RedactValues(secrets ...string) []masq.Option {
	var opts []masq.Option

	for _, s := range secrets {
		if s != "" {
			opts = append(opts, masq.WithRegex(regexp.MustCompile(regexp.QuoteMeta(s))))
		}
	}

	return opts
}

// NewReplaceAttr returns a slog ReplaceAttr func applying the default
// redaction plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
