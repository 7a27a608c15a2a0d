package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/megano/internal/constants"
	"github.com/megano/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderSessionID 非浏览器客户端可通过请求头携带会话ID
const HeaderSessionID = "X-Session-ID"

// Options 会话中间件配置
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Domain     string
}

// Middleware 加载会话并在请求结束后回写修改
func Middleware(store Store, opts Options) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "megano_session"
	}
	return func(c *gin.Context) {
		id := readSessionID(c, opts.CookieName)
		if id == "" {
			id = uuid.NewString()
		}
		state, err := store.Load(c.Request.Context(), id)
		if err != nil {
			logger.Warnw("session_load_failed", "session_id", id, "error", err)
			state = New(id)
		}
		c.Set(constants.ContextKeySession, state)
		c.Set(storeContextKey, boundStore{store: store, ttl: opts.TTL})
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, id, int(opts.TTL.Seconds()), "/", opts.Domain, opts.Secure, true)
		c.Header(HeaderSessionID, id)

		c.Next()

		if err := Persist(c); err != nil {
			logger.Warnw("session_save_failed", "session_id", id, "error", err)
		}
	}
}

const storeContextKey = "session_store"

type boundStore struct {
	store Store
	ttl   time.Duration
}

// FromContext 获取当前请求的会话；未挂载中间件时返回一次性空会话
func FromContext(c *gin.Context) *State {
	if raw, ok := c.Get(constants.ContextKeySession); ok {
		if state, ok := raw.(*State); ok && state != nil {
			return state
		}
	}
	state := New("")
	c.Set(constants.ContextKeySession, state)
	return state
}

// Persist 立即回写已修改的会话，处理器在写响应前调用
func Persist(c *gin.Context) error {
	raw, ok := c.Get(storeContextKey)
	if !ok {
		return nil
	}
	bound, ok := raw.(boundStore)
	if !ok {
		return nil
	}
	state := FromContext(c)
	if !state.Modified() || state.ID() == "" {
		return nil
	}
	return bound.store.Save(c.Request.Context(), state, bound.ttl)
}

func readSessionID(c *gin.Context, cookieName string) string {
	if value, err := c.Cookie(cookieName); err == nil {
		if _, parseErr := uuid.Parse(value); parseErr == nil {
			return value
		}
	}
	header := strings.TrimSpace(c.GetHeader(HeaderSessionID))
	if _, err := uuid.Parse(header); err == nil {
		return header
	}
	return ""
}
