package backend

import (
	"context"
	"fmt"

	"financeflow/internal/amqp"
	"financeflow/internal/log"
	"financeflow/internal/services"
	"financeflow/internal/storage"
	"financeflow/internal/storage/memory"
	"financeflow/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend opens the configured store, connects the optional AMQP
// publisher and returns the service built over both.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}

	opts := []services.Option{
		services.WithStoreTimeout(config.StoreTimeout),
		services.WithLogger(f.logger),
	}

	// A nil *amqp.Client stored in the interface would not compare equal to nil.
	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = client
		}
	}

	service := services.NewFinanceService(store, publisher, opts...)

	f.logger.Info("Initialized backend",
		"type", config.Type.String(),
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Service: service,
		Type:    config.Type,
		AMQP:    publisher != nil,
		Cleanup: service.Close,
	}, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (storage.Store, error) {
	switch config.Type {
	case MemoryBackend:
		f.logger.Warn("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := postgres.NewRepository(ctx, config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
		}
		f.logger.Info("Opened postgres store")
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
