package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
)

const contextSessionKey = "session"

// Claims is the payload of the session cookie JWT. The session itself lives
// server side; the token only points at it.
type Claims struct {
	jwt.StandardClaims
	SessionID  string `json:"sid"`
	ActiveRole string `json:"role,omitempty"`
}

func GetSessionClaims(conf *core.Config, sess session.Session) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   sess.Account.ID,
			ExpiresAt: sess.ExpiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
		SessionID:  sess.ID,
		ActiveRole: sess.ActiveRole,
	}
}

// GenerateToken generates a signed JWT token string representing the session Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func parseToken(conf *core.Config, raw string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return conf.SecretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized
	}
	return claims, nil
}

// sessionMiddleware authenticates requests with the session cookie or an
// Authorization header and loads the server-side session into the context.
// An expired or revoked session clears the cookie.
func sessionMiddleware(conf *core.Config, svc *session.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			raw := tokenFromRequest(ctx, conf)
			if raw == "" {
				return errUnauthorized
			}

			claims, err := parseToken(conf, raw)
			if err != nil {
				clearSessionCookie(ctx, conf)
				return err
			}

			sess, err := svc.Get(ctx.Request().Context(), claims.SessionID)
			if err != nil {
				clearSessionCookie(ctx, conf)
				if errors.Cause(err) == session.ErrNotFound {
					return errUnauthorized
				}
				return errors.Wrap(err, "loading session")
			}

			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func tokenFromRequest(ctx echo.Context, conf *core.Config) string {
	if cookie, err := ctx.Cookie(conf.Session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

func contextSession(ctx echo.Context) (session.Session, error) {
	if sess, ok := ctx.Get(contextSessionKey).(session.Session); ok {
		return sess, nil
	}
	return session.Session{}, errUnauthorized
}

func setSessionCookie(ctx echo.Context, conf *core.Config, sess session.Session) error {
	token, err := GenerateToken(conf, GetSessionClaims(conf, sess))
	if err != nil {
		return errors.Wrap(err, "generating session token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !conf.Debug,
	})
	return nil
}

func clearSessionCookie(ctx echo.Context, conf *core.Config) {
	ctx.SetCookie(&http.Cookie{
		Name:     conf.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
