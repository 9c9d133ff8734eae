package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, splitList("a@x.com, b@x.com"))
	assert.Equal(t, []string{"a@x.com"}, splitList("a@x.com,,"))
	assert.Nil(t, splitList(""))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("ADMIN_EMAILS", "root@hirrd.com")
	t.Setenv("WATCH_INTERVAL", "30s")

	o := &Options{DatabaseDSN: "postgres://flag", WatchInterval: time.Minute}
	applyEnv(o)

	assert.Equal(t, "postgres://env", o.DatabaseDSN)
	assert.Equal(t, "root@hirrd.com", o.adminEmailsRaw)
	assert.Equal(t, 30*time.Second, o.WatchInterval)
}

func TestApplyEnv_InvalidDurationKeepsDefault(t *testing.T) {
	t.Setenv("WATCH_INTERVAL", "not a duration")

	o := &Options{WatchInterval: time.Minute}
	applyEnv(o)

	assert.Equal(t, time.Minute, o.WatchInterval)
}
