package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/controller"
)

func testConfig(t *testing.T) *config.Config {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(root, "invoicer.db")
	cfg.Invoice.OutputDir = filepath.Join(root, "exports")
	cfg.Log.File = filepath.Join(root, "invoicer.log")
	return cfg
}

func TestNewWithConfig_WiresEverything(t *testing.T) {
	a, err := NewWithConfig(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.InvoiceService)
	assert.NotNil(t, a.ReportService)
	require.NotNil(t, a.Controller)
	assert.Equal(t, controller.ModeList, a.Controller.Mode())

	list, err := a.InvoiceService.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestApplyConfig(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	cfg.Invoice.NumberPrefix = "BILL"
	cfg.Invoice.Currency = "USD"
	cfg.Invoice.OutputDir = filepath.Join(t.TempDir(), "elsewhere")
	cfg.Seller.Name = "Acme"
	a.ApplyConfig()

	assert.Regexp(t, `^BILL-\d{8}-\d{8}$`, a.Numbers.Next())
	assert.Equal(t, "USD", a.Exporter.Currency)
	assert.Equal(t, "Acme", a.Exporter.Seller.Name)
	assert.Equal(t, cfg.Invoice.OutputDir, a.Controller.OutputDir())
}

func TestSaveConfig(t *testing.T) {
	cfg := testConfig(t)
	a, err := NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	a.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	cfg.Seller.Email = "me@example.com"
	require.NoError(t, a.SaveConfig())

	loaded, err := config.Load(a.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", loaded.Seller.Email)
}
