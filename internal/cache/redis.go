package cache

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/megano/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "megano"

var (
	client *redis.Client
	prefix = defaultPrefix
)

// InitRedis 按配置创建客户端；未启用时缓存全部退化为空操作
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		client = nil
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	if p := strings.TrimSpace(cfg.Prefix); p != "" {
		prefix = p
	}
	client = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return nil
}

// Close 关闭连接
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

// Enabled 是否已连接 Redis
func Enabled() bool {
	return client != nil
}

// Client 未启用时返回 nil
func Client() *redis.Client {
	return client
}

// Ping 检查连接
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// BuildKey 加上全局前缀
func BuildKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return prefix
	}
	return prefix + ":" + key
}
