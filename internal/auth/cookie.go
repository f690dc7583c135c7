package auth

import (
	"net/http"
	"slices"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// UserIDCookie is set by the authentication service once a user logs in.
const UserIDCookie = "user_id"

// CookieSession derives the login indicator from the request cookies. Only
// the presence of the user_id cookie is observed; nothing is validated
// against the authentication service.
type CookieSession struct {
	userID   string
	present  bool
	revision string
}

// NewCookieSession reads r's cookies. Cookies named in ignore do not count
// towards the revision, so cookies this server sets itself do not look like
// a login state change.
func NewCookieSession(r *http.Request, ignore ...string) *CookieSession {
	cookies := r.Cookies()
	s := &CookieSession{}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == UserIDCookie {
			s.userID = c.Value
			s.present = true
		}
		if slices.Contains(ignore, c.Name) {
			continue
		}
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	sort.Strings(pairs)

	d := xxhash.New()
	for _, p := range pairs {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	s.revision = strconv.FormatUint(d.Sum64(), 16)
	return s
}

// IsAuthenticated reports whether a user_id cookie is present.
func (s *CookieSession) IsAuthenticated() bool { return s.present }

// UserID returns the raw user_id cookie value.
func (s *CookieSession) UserID() string { return s.userID }

// Revision fingerprints the observed cookie set.
func (s *CookieSession) Revision() string { return s.revision }
