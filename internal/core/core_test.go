// AngelaMos | 2026
// core_test.go

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/jobtracker/internal/config"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct-horse-battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordTimingSafe_Rehash(t *testing.T) {
	cheap := PasswordParams{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}
	old, err := cheap.Hash("hunter22")
	require.NoError(t, err)
	assert.Contains(t, old, "m=8192,t=1,p=1")

	ok, rehash, err := VerifyPasswordTimingSafe("hunter22", &old)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, rehash)
	assert.Contains(t, rehash, "m=65536,t=1,p=4")

	ok, rehash, err = VerifyPasswordTimingSafe("hunter22", &rehash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, rehash)

	ok, rehash, err = VerifyPasswordTimingSafe("wrong", &old)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rehash)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$a2V5",
	} {
		_, err := VerifyPassword("pw", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestTokenHashing(t *testing.T) {
	token, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, token, 43)
	assert.NotContains(t, token, "=")

	hash := HashToken(token)
	assert.Len(t, hash, 64)
	assert.True(t, CompareTokenHash(token, hash))
	assert.False(t, CompareTokenHash(token+"x", hash))
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query    string
		page     int
		pageSize int
		offset   int
	}{
		{"", 1, 20, 0},
		{"page=3&page_size=10", 3, 10, 20},
		{"page=-1&page_size=500", 1, 100, 0},
		{"page=abc&page_size=", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			p := ParsePageParams(r)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
			assert.Equal(t, tt.offset, p.Offset())
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, EscapeLike(`50% off_now\`))
}

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsDuplicateKeyError(fk))
	assert.True(t, IsForeignKeyError(fk))
	assert.False(t, IsForeignKeyError(errors.New("plain")))
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, fmt.Errorf("create job: %w", QuotaExceededError("Monthly job limit reached (10)")))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Monthly job limit reached (10)", resp.Message)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PLAN_LIMIT", resp.Error.Code)

	rec = httptest.NewRecorder()
	JSONError(rec, errors.New("connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestPaginatedMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a"}, 2, 10, 21)

	var resp struct {
		Meta PageMeta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestFormatValidationError(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Count int    `validate:"gte=0"`
	}

	err := validator.New().Struct(req{Email: "nope", Count: -1})
	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "count must be greater than or equal to 0")

	assert.Equal(t, "invalid request", FormatValidationError(errors.New("x")))
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.RedisConfig{
		URL:          "redis://:secret@cache.internal:6380/2",
		PoolSize:     25,
		MinIdleConns: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 3, opts.MinIdleConns)

	_, err = redisOptions(config.RedisConfig{URL: "http://nope"})
	assert.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(0).Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, samplerFor(1.5).Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased{0.5}")
}

func TestTelemetryDisabledIsNoop(t *testing.T) {
	tel, err := NewTelemetry(context.Background(), config.OtelConfig{}, config.AppConfig{})
	require.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestServerSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/42", nil)
	ctx, span := StartServerSpan(req)
	assert.Len(t, TraceIDFromContext(ctx), 32)

	FinishServerSpan(span, http.MethodGet, "/api/jobs/{jobID}", http.StatusServiceUnavailable)

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /api/jobs/{jobID}", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
}
