package source

import "errors"

var (
	// ErrUnexpectedStatus is returned when a page fetch does not answer 2xx.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address: must be host:port")

	// ErrUnsupportedScheme is returned for targets that are neither
	// http(s) URLs nor local files.
	ErrUnsupportedScheme = errors.New("unsupported target scheme")
)
