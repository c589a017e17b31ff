package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the web client stores its Firebase
// session in.
const SessionCookie = "session"

// CtxUserUID is the gin context key RequireUser stores the caller's
// UID under.
const CtxUserUID = "user_uid"

// UserUID returns the authenticated UID set by RequireUser, or "" on
// routes outside the authenticated group.
func UserUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserUID))
}

// TokenVerifier is the part of the Firebase auth client the middleware
// needs. *fbauth.Client satisfies it; tests plug in a fake.
type TokenVerifier interface {
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*fbauth.Token, error)
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// RequireUser authenticates every request on the group. A session
// cookie is checked first, then a Bearer ID token. Requests with
// neither, or with a credential that fails verification, get a 401.
//
// When verifier is nil and devFallback is set, the X-User-Id header is
// trusted instead so the API can run locally without Firebase.
func RequireUser(verifier TokenVerifier, devFallback bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			if !devFallback {
				unauthorized(c)
				return
			}
			uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
			if uid == "" {
				uid = "dev-user"
			}
			c.Set(CtxUserUID, uid)
			c.Next()
			return
		}

		ctx := c.Request.Context()

		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			token, err := verifier.VerifySessionCookie(ctx, cookie)
			if err != nil {
				unauthorized(c)
				return
			}
			c.Set(CtxUserUID, token.UID)
			c.Next()
			return
		}

		if bearer := extractBearer(c); bearer != "" {
			token, err := verifier.VerifyIDToken(ctx, bearer)
			if err != nil {
				unauthorized(c)
				return
			}
			c.Set(CtxUserUID, token.UID)
			c.Next()
			return
		}

		unauthorized(c)
	}
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	c.Abort()
}

// extractBearer pulls the token out of the Authorization header.
func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
