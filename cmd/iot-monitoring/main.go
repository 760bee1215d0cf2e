package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/common/database"
	logpkg "github.com/prashant-rs/iot-monitoring/common/logger"
	mqttcommon "github.com/prashant-rs/iot-monitoring/common/mqtt"
	rediscommon "github.com/prashant-rs/iot-monitoring/common/redis"
	"github.com/prashant-rs/iot-monitoring/internal/config"
	httpapi "github.com/prashant-rs/iot-monitoring/internal/http"
	"github.com/prashant-rs/iot-monitoring/internal/publisher"
	"github.com/prashant-rs/iot-monitoring/internal/repository"
	"github.com/prashant-rs/iot-monitoring/internal/service"
	"github.com/prashant-rs/iot-monitoring/internal/simulation"
	"github.com/prashant-rs/iot-monitoring/internal/store"
)

func main() {
	cfg := config.Load()

	// 初始化日志
	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "iot-monitoring")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting iot-monitoring service",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 数据库 + 迁移
	repos, closeDB, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer closeDB()

	if _, err := repos.SimulationConfig.EnsureDefault(ctx); err != nil {
		log.Fatal("Failed to bootstrap simulation config", zap.Error(err))
	}
	if _, err := repos.SimulationConfig.Get(ctx); err != nil {
		if errors.Is(err, repository.ErrConfigMissing) {
			log.Fatal("Simulation config row is missing")
		}
		log.Fatal("Failed to read simulation config", zap.Error(err))
	}

	// 读数发布（Redis / MQTT 均可选）
	var (
		publishers  publisher.Multi
		latest      *store.LatestReadings
		redisClient *rediscommon.Client
		mqttClient  *mqttcommon.Client
		broker      *mqttcommon.EmbeddedBroker
	)

	if cfg.Redis.Enabled {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, redisClient); err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		latest = store.NewLatestReadings(store.NewRedisKV(redisClient), time.Duration(cfg.Readings.LatestTTLSecond)*time.Second)
		publishers = append(publishers, publisher.NewRedisPublisher(redisClient, cfg.Readings.Stream, cfg.Readings.StreamMaxLen, latest, log))
		log.Info("Redis reading publisher enabled", zap.String("stream", cfg.Readings.Stream))
	}

	if cfg.MQTT.Enabled {
		if cfg.MQTT.EmbeddedBroker {
			broker, err = mqttcommon.StartEmbeddedBroker(cfg.MQTT.EmbeddedAddr, log)
			if err != nil {
				log.Fatal("Failed to start embedded MQTT broker", zap.Error(err))
			}
		}
		mqttClient, err = mqttcommon.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		}
		publishers = append(publishers, publisher.NewMQTTPublisher(mqttClient, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS, log))
		log.Info("MQTT reading publisher enabled", zap.String("topic_prefix", cfg.MQTT.TopicPrefix))
	}

	// 未启用任何发布器时传入 nil 接口
	var readingPublisher simulation.ReadingPublisher
	if len(publishers) > 0 {
		readingPublisher = publishers
	}

	engine := simulation.NewEngine(repos.Sensors, repos.SensorLogs, repos.SimulationConfig, readingPublisher, log)

	bedroomSvc := service.NewBedroomService(repos.Bedrooms, log)
	sensorSvc := service.NewSensorService(repos.Sensors, repos.Bedrooms, log)
	sensorLogSvc := service.NewSensorLogService(repos.SensorLogs, latest, log)
	simulationSvc := service.NewSimulationService(engine, repos.SimulationConfig, log)

	if cfg.Simulation.AutoResume {
		resumed, err := simulationSvc.Resume(ctx)
		if err != nil {
			log.Error("Failed to resume simulation", zap.Error(err))
		} else if !resumed {
			log.Info("Simulation not resumed (persisted state is stopped)")
		}
	}

	retention := service.NewRetentionService(sensorLogSvc, cfg.Retention.Days, time.Duration(cfg.Retention.IntervalSeconds)*time.Second, log)
	go retention.Run(ctx)

	handler := httpapi.NewAPIHandler(httpapi.Services{
		Bedrooms:   bedroomSvc,
		Sensors:    sensorSvc,
		SensorLogs: sensorLogSvc,
		Simulation: simulationSvc,
	}, log)
	server := service.NewServer(cfg.HTTP.Addr, handler, log)
	if err := server.Listen(); err != nil {
		log.Fatal("Failed to start HTTP server", zap.Error(err))
	}

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("HTTP server error", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := engine.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping simulation engine", zap.Error(err))
	}
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", zap.Error(err))
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Error("Error stopping embedded MQTT broker", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := rediscommon.Close(redisClient); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}

	log.Info("Service stopped")
}

// openRepositories 按 DB_DRIVER 打开数据库并执行迁移
func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewPostgresDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.MigratePostgres(ctx, db, log); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
		return repository.NewPostgresRepositories(db), func() { _ = database.Close(db) }, nil

	case "sqlite":
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := repository.MigrateSQLite(db); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Connected to SQLite", zap.String("path", cfg.Database.SQLitePath))
		return repository.NewSQLiteRepositories(db), func() { _ = sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
}
