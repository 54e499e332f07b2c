package pager

// Token is an opaque continuation marker issued by a Source. The zero value
// is the absent token: it requests the first page and, when returned with a
// page, means there is nothing left to fetch.
type Token struct {
	value  string
	origin string
}

// NewToken wraps a service-issued marker. Empty markers yield the absent token.
func NewToken(marker string) Token {
	return Token{value: marker}
}

// TokenFromPtr converts an SDK continuation field into a Token.
func TokenFromPtr(marker *string) Token {
	if marker == nil {
		return Token{}
	}
	return Token{value: *marker}
}

// WithOrigin tags the token with the endpoint that issued it. Sources use the
// origin to send follow-up requests back to that endpoint. The absent token
// stays absent.
func (t Token) WithOrigin(origin string) Token {
	if t.Absent() {
		return Token{}
	}
	t.origin = origin
	return t
}

// Origin returns the endpoint tag set by WithOrigin, or "".
func (t Token) Origin() string {
	return t.origin
}

// Absent reports whether the token carries no continuation state.
func (t Token) Absent() bool {
	return t.value == ""
}

// Ptr returns the marker in the shape SDK inputs expect, nil when absent.
func (t Token) Ptr() *string {
	if t.Absent() {
		return nil
	}
	marker := t.value
	return &marker
}
