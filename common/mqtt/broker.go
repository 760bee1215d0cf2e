package mqtt

import (
	"fmt"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"go.uber.org/zap"
)

// EmbeddedBroker 进程内 MQTT broker
// 本地联调时无需单独部署 mosquitto，模拟数据直接发布到内嵌 broker
type EmbeddedBroker struct {
	server *mochi.Server
	addr   string
	logger *zap.Logger
}

// StartEmbeddedBroker 创建并启动内嵌 broker（允许所有连接）
func StartEmbeddedBroker(addr string, logger *zap.Logger) (*EmbeddedBroker, error) {
	server := mochi.New(nil)

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("failed to add auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{
		ID:      "iot-monitoring-tcp",
		Address: addr,
	})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("failed to add TCP listener: %w", err)
	}

	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("failed to start MQTT broker: %w", err)
	}

	logger.Info("Embedded MQTT broker started", zap.String("addr", addr))

	return &EmbeddedBroker{server: server, addr: addr, logger: logger}, nil
}

// Addr 监听地址
func (b *EmbeddedBroker) Addr() string {
	return b.addr
}

// Close 关闭 broker
func (b *EmbeddedBroker) Close() error {
	b.logger.Info("Stopping embedded MQTT broker")
	return b.server.Close()
}
