package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/utils/cache"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/response"
)

// BruteForceProtection applies progressive login lockouts per IP using Redis.
// With a nil cache every check passes.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// CheckAndRecordAttempt middleware checks if IP is locked out
func (b *BruteForceProtection) CheckAndRecordAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()

		locked, err := b.redisCache.Exists(c.UserContext(), lockKey(ip))
		if err != nil {
			// Redis down: let the request through
			logger.Ctx(c.UserContext()).Warn().Err(err).Msg("brute force check skipped")
			return c.Next()
		}

		if locked {
			ttl, _ := b.redisCache.TTL(c.UserContext(), lockKey(ip))
			retryAfter := int(ttl.Seconds())
			if retryAfter <= 0 {
				retryAfter = 60
			}

			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// LockoutFor maps a failed attempt count to a lockout duration
func LockoutFor(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx, ip, email string) error {
	ctx := c.UserContext()

	attempts, err := b.redisCache.Increment(ctx, attemptKey(ip))
	if err != nil {
		return nil
	}

	// 15 minute window
	if attempts == 1 {
		_ = b.redisCache.Expire(ctx, attemptKey(ip), 15*time.Minute)
	}

	lockDuration := LockoutFor(attempts)
	if lockDuration == 0 {
		return nil
	}

	logger.Ctx(ctx).Warn().
		Str("ip", ip).
		Str("email", strings.ToLower(email)).
		Int64("attempts", attempts).
		Dur("lockout", lockDuration).
		Msg("login locked out")

	return b.redisCache.Set(ctx, lockKey(ip), "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx, ip string) error {
	return b.redisCache.Delete(c.UserContext(), attemptKey(ip), lockKey(ip))
}
