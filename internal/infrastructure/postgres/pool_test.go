package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "secreto", DBName: "inv", SSLMode: "disable",
		MaxConns: 12, MinConns: 3, LockTimeoutMS: 2500,
	}
	pc, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	assert.EqualValues(t, 12, pc.MaxConns)
	assert.EqualValues(t, 3, pc.MinConns)
	assert.Equal(t, "2500", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.Equal(t, "inv", pc.ConnConfig.Database)
	assert.NotNil(t, pc.AfterConnect)
}

func TestBuildPoolConfig_DatabaseURLSinLockTimeout(t *testing.T) {
	pc, err := buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@remote:6543/ledger?sslmode=disable"})
	require.NoError(t, err)
	assert.Equal(t, "remote", pc.ConnConfig.Host)
	assert.EqualValues(t, 6543, pc.ConnConfig.Port)
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)
}

func TestBuildPoolConfig_DSNInvalido(t *testing.T) {
	_, err := buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	require.Error(t, err)
}
