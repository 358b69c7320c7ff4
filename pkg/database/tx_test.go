package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTxFromContext(t *testing.T) {
	_, ok := TxFromContext(context.Background())
	assert.False(t, ok)

	tx := &gorm.DB{}
	got, ok := TxFromContext(WithTx(context.Background(), tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)

	_, ok = TxFromContext(WithTx(context.Background(), nil))
	assert.False(t, ok)
}

func TestPostgresConfigURLs(t *testing.T) {
	cfg := PostgresConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5433/d?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable TimeZone=UTC", cfg.DSN())
}
