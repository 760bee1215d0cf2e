package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prashant-rs/iot-monitoring/internal/domain"
)

// MQTTClient common/mqtt.Client 中用到的方法
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher 每条读数发布到 <prefix>/<room>/<sensor>
type MQTTPublisher struct {
	client MQTTClient
	prefix string
	qos    byte
	logger *zap.Logger
}

func NewMQTTPublisher(client MQTTClient, prefix string, qos byte, logger *zap.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client: client,
		prefix: strings.TrimSuffix(prefix, "/"),
		qos:    qos,
		logger: logger,
	}
}

var _ ReadingPublisher = (*MQTTPublisher)(nil)

func (p *MQTTPublisher) Publish(_ context.Context, events []domain.ReadingEvent) error {
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		topic := p.Topic(ev.RoomName, ev.SensorName)
		if err := p.client.Publish(topic, p.qos, false, payload); err != nil {
			return fmt.Errorf("failed to publish reading for sensor %d: %w", ev.SensorID, err)
		}
	}

	p.logger.Debug("Published readings to MQTT", zap.String("prefix", p.prefix), zap.Int("count", len(events)))
	return nil
}

// Topic 房间名、传感器名转为 topic 段：小写，空白转 '-'，去掉 MQTT 保留字符
func (p *MQTTPublisher) Topic(room, sensor string) string {
	return p.prefix + "/" + topicSegment(room) + "/" + topicSegment(sensor)
}

func topicSegment(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '/', '+', '#':
			b.WriteRune('_')
		case ' ', '\t':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
