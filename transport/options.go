package transport

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	contentType string
	headers     map[string]string
}

// WithContentType overrides the Content-Type header, required for raw io.Reader bodies.
func WithContentType(contentType string) RequestOption {
	return func(ro *requestOptions) {
		ro.contentType = contentType
	}
}

// WithHeader sets an additional request header.
func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		if ro.headers == nil {
			ro.headers = make(map[string]string)
		}
		ro.headers[key] = value
	}
}

func newRequestOptions(opts []RequestOption) requestOptions {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// ApplyRequestOptions resolves opts into the content type and extra headers they set.
// It lets Doer implementations outside this package, such as test doubles,
// honour the same options Client does.
func ApplyRequestOptions(opts ...RequestOption) (contentType string, headers map[string]string) {
	ro := newRequestOptions(opts)
	return ro.contentType, ro.headers
}
