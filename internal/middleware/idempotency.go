package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"beautyhub-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// How long the "in-progress" lock holds before the handler must have finished.
const provisionalLockTTL = 60 * time.Second

type idempEntry struct {
	InProgress bool      `json:"in_progress"`
	Code       int       `json:"code"`
	Body       []byte    `json:"body"`
	BodySHA256 string    `json:"body_sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

var (
	reKeyUUID  = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)
	reKeyHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)
)

func validIdempotencyKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return reKeyUUID.MatchString(key) || reKeyHex32.MatchString(key)
}

// IdempotencyMiddleware deduplicates mutating requests carrying an
// Idempotency-Key header. Retries with the same key and body replay the
// stored response; the same key with a different body is rejected.
// Requests without the header pass through untouched.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if key == "" {
			c.Next()
			return
		}
		if !validIdempotencyKey(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid Idempotency-Key format"))
			return
		}

		// Buffer & hash body so it can be re-read by the handler
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		sum := sha256.Sum256(body)
		bhash := hex.EncodeToString(sum[:])

		userID := c.GetString("userID")
		storageKey := "idemp:" + strings.ToLower(c.Request.Method) + ":" + c.FullPath() + ":" + userID + ":" + strings.ToLower(key)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		entry := idempEntry{
			InProgress: true,
			BodySHA256: bhash,
			CreatedAt:  time.Now().UTC(),
		}
		payload, _ := json.Marshal(entry)
		acquired, err := rdb.SetNX(ctx, storageKey, payload, provisionalLockTTL).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Idempotency store unavailable"))
			return
		}

		if !acquired {
			// Key exists: body must match, and we may be able to replay
			var cur idempEntry
			if raw, loadErr := rdb.Get(ctx, storageKey).Bytes(); loadErr == nil {
				_ = json.Unmarshal(raw, &cur)
			}

			if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
				c.AbortWithStatusJSON(http.StatusConflict, response.Error(http.StatusConflict, "Idempotency-Key reused with different body"))
				return
			}
			if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
				c.Data(cur.Code, "application/json", cur.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, response.Error(http.StatusConflict, "Request is already in progress"))
			return
		}

		// Call the handler and record the final response
		rec := &bodyRecorder{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		final := idempEntry{
			InProgress: false,
			Code:       rec.Status(),
			Body:       rec.buf.Bytes(),
			BodySHA256: bhash,
			CreatedAt:  time.Now().UTC(),
		}
		finalPayload, _ := json.Marshal(final)
		_ = rdb.Set(context.Background(), storageKey, finalPayload, ttl).Err()
	}
}
