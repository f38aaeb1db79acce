package kafka

import "Applyhub/internal/pkg/consts"

// canal 事件类型
const (
	INSERT = consts.INSERT
	UPDATE = consts.UPDATE
	DELETE = consts.DELETE
)

// CanalMessage Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"` // binlog 执行时间，毫秒
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 变更后的数据，canal 的值统一是字符串
	Data []map[string]interface{} `json:"data"`

	// Old 变更前被修改的字段
	Old []map[string]interface{} `json:"old"`

	SqlType   map[string]int    `json:"sqlType"`
	MysqlType map[string]string `json:"mysqlType"`
}
