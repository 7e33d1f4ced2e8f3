package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig configures the Redis-backed session layer.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	sessionCookieName  = "brokwise.sid"
	SessionRedisPrefix = "session:"
	sessionTTL         = 24 * time.Hour

	sessionLocal = "session_state"
	userLocal    = "user"
)

// SessionUser is the shape persisted under the session's "user" key.
type SessionUser struct {
	UserID   string `json:"user_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// sessionState is the per-request view of the session. Handlers mutate it
// through the helpers below; the middleware writes it back only when dirty.
type sessionState struct {
	id    string
	data  map[string]interface{}
	dirty bool
}

// Session returns the session middleware plus the Redis client it opened,
// so the caller can reuse the client for health stats and session tracking.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)

	return func(c *fiber.Ctx) error {
		state := &sessionState{
			id:   c.Cookies(sessionCookieName),
			data: map[string]interface{}{},
		}
		if state.id != "" {
			if raw, err := rdb.Get(c.UserContext(), SessionRedisPrefix+state.id).Bytes(); err == nil {
				_ = json.Unmarshal(raw, &state.data)
			}
		}

		c.Locals(sessionLocal, state)
		c.Locals(userLocal, state.data["user"])

		if err := c.Next(); err != nil {
			return err
		}

		// Write-back happens only for sessions a handler touched, so
		// anonymous traffic never creates Redis keys.
		if state.dirty && state.id != "" {
			raw, _ := json.Marshal(state.data)
			rdb.Set(c.UserContext(), SessionRedisPrefix+state.id, raw, sessionTTL)
		}
		return nil
	}, rdb, nil
}

func currentSession(c *fiber.Ctx) *sessionState {
	state, _ := c.Locals(sessionLocal).(*sessionState)
	return state
}

// GetSessionID returns the session ID for the current request, or "".
func GetSessionID(c *fiber.Ctx) string {
	if state := currentSession(c); state != nil {
		return state.id
	}
	return ""
}

// RegenerateSessionID issues a fresh session ID. Called on login so an
// attacker-supplied pre-login cookie never becomes an authenticated session.
func RegenerateSessionID(c *fiber.Ctx) string {
	id := uuid.New().String()
	if state := currentSession(c); state != nil {
		state.id = id
	}
	return id
}

// SetSessionUser stores the user in the session and marks it for write-back.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	state := currentSession(c)
	if state == nil {
		return
	}
	state.data["user"] = map[string]interface{}{
		"user_id":  user.UserID,
		"fullname": user.Fullname,
		"email":    user.Email,
		"role":     user.Role,
	}
	state.dirty = true
	c.Locals(userLocal, state.data["user"])
}

// DestroySession empties the in-flight session. The caller deletes the Redis
// key and clears the cookie.
func DestroySession(c *fiber.Ctx) {
	if state := currentSession(c); state != nil {
		state.data = map[string]interface{}{}
		state.dirty = false
		state.id = ""
	}
	c.Locals(userLocal, nil)
}

// SessionCookieConfig returns the cookie template for login and logout.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return fiber.Cookie{
		Name:     sessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction && cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
