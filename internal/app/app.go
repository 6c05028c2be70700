package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/controller"
	"github.com/andy/invoicer/internal/crypto"
	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/logging"
	"github.com/andy/invoicer/internal/repository"
	"github.com/andy/invoicer/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	DB         *db.DB
	Logger     *slog.Logger
	logCloser  io.Closer

	// Repositories
	InvoiceRepo repository.InvoiceRepository

	// Invoice numbering and rendering
	Numbers  *domain.NumberGenerator
	Exporter *export.Exporter

	// Services
	InvoiceService service.InvoiceService
	ReportService  service.ReportService

	// Controller holds the editor state for the TUI and the new command
	Controller *controller.Controller
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting the encryption key (sqlcipher driver only)
// 3. Opening database
// 4. Running migrations
// 5. Creating repositories, services and the controller
func New(ctx context.Context, configPath string) (*App, error) {
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.ConfigPath = configPath
	return a, nil
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	// Ensure all necessary directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, logCloser := logging.New(cfg.Log)

	var password string
	if cfg.Storage.Driver == db.DriverSQLCipher || cfg.Storage.Driver == "" {
		var err error
		password, err = encryptionKey()
		if err != nil {
			logCloser.Close()
			return nil, err
		}
	}

	// Open the database
	database, err := db.Open(cfg.Storage.Driver, cfg.Storage.Path, password)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations to ensure schema is up to date
	if err := database.RunMigrations(); err != nil {
		database.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("store opened", "driver", database.Driver, "path", cfg.Storage.Path)

	a := &App{
		Config:     cfg,
		ConfigPath: config.DefaultConfigPath(),
		DB:         database,
		Logger:     logger,
		logCloser:  logCloser,
	}
	a.wire()
	return a, nil
}

// wire builds repositories, services and the controller on top of an open store
func (a *App) wire() {
	cfg := a.Config

	a.InvoiceRepo = repository.NewInvoiceRepo(a.DB)
	a.Numbers = domain.NewNumberGenerator(cfg.Invoice.NumberPrefix)
	a.Exporter = export.NewExporter(sellerFromConfig(cfg.Seller), cfg.Invoice.Currency)

	a.InvoiceService = service.NewInvoiceService(a.InvoiceRepo, a.Numbers, a.Exporter, a.Logger)
	a.ReportService = service.NewReportService(a.InvoiceRepo)
	a.Controller = controller.New(a.InvoiceService, cfg.Invoice.OutputDir, a.Logger)
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return err
}

// ApplyConfig pushes edited settings into the running components
func (a *App) ApplyConfig() {
	cfg := a.Config
	a.Numbers.SetPrefix(cfg.Invoice.NumberPrefix)
	a.Exporter.Seller = sellerFromConfig(cfg.Seller)
	a.Exporter.Currency = cfg.Invoice.Currency
	if strings.TrimSpace(a.Exporter.Currency) == "" {
		a.Exporter.Currency = domain.DefaultCurrency
	}
	a.Controller.SetOutputDir(cfg.Invoice.OutputDir)
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(a.ConfigPath)
}

func sellerFromConfig(s config.SellerConfig) export.Seller {
	return export.Seller{
		Name:    s.Name,
		Phone:   s.Phone,
		Address: s.Address,
		Email:   s.Email,
	}
}

// encryptionKey returns the stored database key, prompting for a new one on first run
func encryptionKey() (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}

	// No key exists, prompt user to set one
	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
