package worker

import "testing"

func TestWorkerOptions(t *testing.T) {
	w := New(nil,
		WithRedisAddr("redis:6380"),
		WithRedisUsername("doclens"),
		WithRedisPassword("secret"),
		WithRedisDB(2),
		WithConcurrency(3),
	)

	if w.redisAddr != "redis:6380" {
		t.Errorf("invalid redis addr, got '%s'", w.redisAddr)
	}
	if w.redisUsername != "doclens" {
		t.Errorf("invalid redis username, got '%s'", w.redisUsername)
	}
	if w.redisPassword != "secret" {
		t.Errorf("invalid redis password, got '%s'", w.redisPassword)
	}
	if w.redisDB != 2 {
		t.Errorf("invalid redis db, got %d", w.redisDB)
	}
	if w.concurrency != 3 {
		t.Errorf("invalid concurrency, got %d", w.concurrency)
	}
}

func TestWorkerDefaults(t *testing.T) {
	w := New(nil)

	if w.redisAddr != "localhost:6379" {
		t.Errorf("invalid default redis addr, got '%s'", w.redisAddr)
	}
	if w.redisUsername != "" {
		t.Errorf("expected no default username, got '%s'", w.redisUsername)
	}
	if w.concurrency != defaultConcurrency {
		t.Errorf("invalid default concurrency, got %d", w.concurrency)
	}

	w = New(nil, WithConcurrency(0))
	if w.concurrency != defaultConcurrency {
		t.Errorf("non-positive concurrency should keep the default, got %d", w.concurrency)
	}
}
