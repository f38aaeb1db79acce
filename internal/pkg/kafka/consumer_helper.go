package kafka

import (
	"Applyhub/internal/pkg/util"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second

	maxRetryInterval = 5 * time.Second
)

// errSkipMessage 消息无法处理（格式错误、不属于本 handler），直接提交不再重试
var errSkipMessage = errors.New("skip message")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session.Context(), session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session.Context(), session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session.Context(), session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// offsetMarker 便于测试时替换 session
type offsetMarker interface {
	MarkMessage(msg *sarama.ConsumerMessage, metadata string)
}

// processBatch 并发处理一批消息，失败的消息指数退避重试，全部完成后提交最后一条的 offset
func processBatch(ctx context.Context, marker offsetMarker, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)
		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			retryInterval := 100 * time.Millisecond
			for {
				err := logic(ctx, m)
				if err == nil {
					return
				}
				if errors.Is(err, errSkipMessage) {
					log.Warn("skip kafka message", "topic", m.Topic, "offset", m.Offset, "err", err)
					return
				}
				log.Error("process message error", "topic", m.Topic, "offset", m.Offset, "err", err)

				select {
				case <-ctx.Done():
					return
				case <-time.After(retryInterval):
				}
				retryInterval = min(retryInterval*2, maxRetryInterval)
			}
		}(msg)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return
	}
	if len(messages) > 0 {
		marker.MarkMessage(messages[len(messages)-1], "")
	}
}

// ToCanalMessage 将 kafka 消息转换为 canal 消息结构体
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, fmt.Errorf("%w: unmarshal canal message: %v", errSkipMessage, err)
	}
	if canalMsg.Table != tableName {
		return nil, fmt.Errorf("%w: table %q not match %q", errSkipMessage, canalMsg.Table, tableName)
	}
	if len(canalMsg.Data) == 0 {
		return nil, fmt.Errorf("%w: data is empty", errSkipMessage)
	}
	return &canalMsg, nil
}

// StrToUint64 canal 数据的值为字符串，兼容数字类型
func StrToUint64(v interface{}) uint64 {
	switch val := v.(type) {
	case string:
		n, _ := strconv.ParseUint(val, 10, 64)
		return n
	case float64:
		return uint64(val)
	case json.Number:
		n, _ := strconv.ParseUint(val.String(), 10, 64)
		return n
	default:
		return 0
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// eventDay canal 事件发生当天（UTC），缺省取当前时间
func eventDay(esMillis int64) time.Time {
	t := time.Now()
	if esMillis > 0 {
		t = time.UnixMilli(esMillis)
	}
	return util.MetricDay(t)
}
