// Package dbtest opens throwaway SQLite databases carrying the service schema.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE spaces (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  nome TEXT NOT NULL,
  comissao TEXT,
  open_pix_wallet_id TEXT,
  stripe_connect_account_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE plans (
  id TEXT PRIMARY KEY,
  nome TEXT NOT NULL,
  preco NUMERIC NOT NULL,
  ativo INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  space_id TEXT NOT NULL,
  plan_id TEXT,
  valor NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE subscriptions (
  id TEXT PRIMARY KEY,
  space_id TEXT NOT NULL,
  plan_id TEXT NOT NULL,
  stripe_subscription_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE commission_configs (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL UNIQUE,
  commission_type TEXT NOT NULL,
  commission_value NUMERIC NOT NULL,
  enable_plan_commission INTEGER NOT NULL DEFAULT 0,
  open_pix_enabled INTEGER NOT NULL DEFAULT 0,
  open_pix_wallet_id TEXT,
  stripe_enabled INTEGER NOT NULL DEFAULT 0,
  stripe_account_id TEXT,
  stripe_commission_rate NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE plan_commissions (
  id TEXT PRIMARY KEY,
  plan_id TEXT NOT NULL UNIQUE,
  commission_type TEXT NOT NULL,
  commission_value NUMERIC NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE space_commissions (
  id TEXT PRIMARY KEY,
  space_id TEXT NOT NULL UNIQUE,
  commission_type TEXT NOT NULL,
  commission_value NUMERIC NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  order_id TEXT,
  subscription_id TEXT,
  space_id TEXT NOT NULL,
  gateway TEXT NOT NULL,
  gateway_reference TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  valor NUMERIC NOT NULL,
  valor_liquido NUMERIC NOT NULL,
  comissao_plataforma NUMERIC NOT NULL,
  commission_source TEXT NOT NULL,
  commission_type TEXT NOT NULL,
  commission_value NUMERIC NOT NULL,
  split_applied INTEGER NOT NULL DEFAULT 0,
  payment_code TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

// Open returns an isolated in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// one connection keeps a transaction and its follow-up reads on the same database state
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}
